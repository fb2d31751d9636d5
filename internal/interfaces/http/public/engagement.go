package public

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type contributionKind int

const (
	voteContribution contributionKind = iota
	reportContribution
	commentContribution
)

func (k contributionKind) domainKind() domain.ContributionKind {
	switch k {
	case voteContribution:
		return domain.KindVote
	case reportContribution:
		return domain.KindReport
	default:
		return domain.KindComment
	}
}

type reactionKind int

const (
	likeReaction reactionKind = iota
	dislikeReaction
)

func (k reactionKind) domainReaction() domain.Reaction {
	if k == dislikeReaction {
		return domain.ReactionDislike
	}
	return domain.ReactionLike
}

// contributionHandler は vote / report / comment の一意追記エンドポイント。
// 行為者は検証済みトークンの email であり、リクエストボディの申告は信用しない。
// 重複寄与は 409 を返し、カウンタを含め一切の書き込みを行わない。
func (h *Handler) contributionHandler(kind contributionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		var req contributionRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		applied, err := h.engagement.AppendUnique(ctx, application.AppendContributionCommand{
			SurveyID:   strings.TrimSpace(chi.URLParam(r, "id")),
			Kind:       kind.domainKind(),
			ActorEmail: user.Email,
			Choice:     req.Choice,
			Message:    req.Message,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyContributed) {
				common.WriteJSON(h.logger, w, http.StatusConflict, appendResultResponse{Applied: false})
				return
			}
			common.WriteDomainError(h.logger, w, err, "寄与の登録に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, appendResultResponse{Applied: applied})
	}
}

// reactionHandler は like / dislike の無条件加算エンドポイント。重複排除はしない仕様。
func (h *Handler) reactionHandler(kind reactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		counters, err := h.engagement.React(ctx, id, kind.domainReaction())
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "リアクションの登録に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, countersResponse{
			VotedCount:   counters.Voted,
			ReportCount:  counters.Report,
			CommentCount: counters.Comment,
			LikeCount:    counters.Like,
			DislikeCount: counters.Dislike,
		})
	}
}
