package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

// surveyListHandler は公開済みアンケートの一覧 API。認証不要。
func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		surveys, err := h.surveyQueries.ListPublished(ctx)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケート一覧の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildSurveySummaries(surveys))
	}
}

// mySurveyListHandler は認証済みユーザー自身が所有するアンケートを返す。
// 所有者はトークンの email から決まり、他人の一覧は参照できない。
func (h *Handler) mySurveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		surveys, err := h.surveyQueries.ListByOwner(ctx, user.Email)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケート一覧の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildSurveySummaries(surveys))
	}
}

// surveyFeedbackListHandler は指定種別のフィードバックが付いたアンケートを所有者別に返す。
// kind クエリで report / comment を切り替える。省略時は comment。
func (h *Handler) surveyFeedbackListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		email := strings.TrimSpace(chi.URLParam(r, "email"))
		kind := domain.ContributionKind(strings.TrimSpace(r.URL.Query().Get("kind")))
		if kind == "" {
			kind = domain.KindComment
		}

		surveys, err := h.surveyQueries.ListWithFeedbackKind(ctx, email, kind)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "フィードバック一覧の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildSurveySummaries(surveys))
	}
}

// surveyDetailHandler は単一アンケートの詳細と、閲覧者の投票済みフラグを返す。
func (h *Handler) surveyDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		viewerEmail := strings.TrimSpace(r.URL.Query().Get("email"))

		survey, voted, err := h.surveyQueries.Detail(ctx, id, viewerEmail)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケート詳細の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildSurveyDetail(*survey, voted))
	}
}

// surveyCreateHandler は認証済みユーザー名義の下書きアンケートを作成する。
func (h *Handler) surveyCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		var req createSurveyRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		survey, err := h.surveyCommands.Submit(ctx, application.SubmitSurveyCommand{
			OwnerEmail:  user.Email,
			Title:       req.Title,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケートの作成に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildSurveySummary(*survey))
	}
}

// surveyPublishHandler は draft から published への遷移を行う。所有者か admin のみ。
func (h *Handler) surveyPublishHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if err := h.surveyCommands.Publish(ctx, id, user.Email); err != nil {
			common.WriteDomainError(h.logger, w, err, "アンケートの公開に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": string(domain.StatusPublished)})
	}
}
