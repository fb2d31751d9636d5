package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
)

type surveyResponse struct {
	ID           string `json:"id"`
	OwnerEmail   string `json:"ownerEmail"`
	Title        string `json:"title"`
	Category     string `json:"category,omitempty"`
	Status       string `json:"status"`
	VotedCount   int    `json:"votedCount"`
	ReportCount  int    `json:"reportCount"`
	CommentCount int    `json:"commentCount"`
	LikeCount    int    `json:"likeCount"`
	DislikeCount int    `json:"dislikeCount"`
	CreatedAt    string `json:"createdAt"`
}

// surveyListHandler は公開状態を問わず全アンケートを返す管理用の一覧 API。
func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		surveys, err := h.surveyService.List(ctx)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケート一覧の取得に失敗しました")
			return
		}

		responses := make([]surveyResponse, 0, len(surveys))
		for _, survey := range surveys {
			responses = append(responses, surveyResponse{
				ID:           survey.ID,
				OwnerEmail:   survey.OwnerEmail,
				Title:        survey.Title,
				Category:     survey.Category,
				Status:       string(survey.Status),
				VotedCount:   survey.Counters.Voted,
				ReportCount:  survey.Counters.Report,
				CommentCount: survey.Counters.Comment,
				LikeCount:    survey.Counters.Like,
				DislikeCount: survey.Counters.Dislike,
				CreatedAt:    survey.CreatedAt.Format(time.RFC3339),
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, responses)
	}
}
