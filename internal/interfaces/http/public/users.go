package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
)

// userUpsertHandler は初回サインイン時の insert-if-new。既存ユーザーには何もしない冪等 API。
func (h *Handler) userUpsertHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var req upsertUserRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		created, err := h.entitlements.EnsureUser(ctx, req.Email, req.Name)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "ユーザーの登録に失敗しました")
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		common.WriteJSON(h.logger, w, status, map[string]bool{"created": created})
	}
}

// capabilitiesHandler はロールから導出した権限フラグを返す。
// 本人以外の照会は拒否する（トークンの email と一致する場合のみ許可）。
func (h *Handler) capabilitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		email := strings.TrimSpace(chi.URLParam(r, "email"))
		if !strings.EqualFold(email, user.Email) {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "他のユーザーの権限は参照できません"})
			return
		}

		// 照合は大文字小文字を無視するため、検索キーはトークン側の表記に正規化する。
		caps, err := h.entitlements.Capabilities(ctx, user.Email)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "権限の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, capabilitiesResponse{
			IsAdmin:    caps.IsAdmin,
			IsSurveyor: caps.IsSurveyor,
			IsProUser:  caps.IsProUser,
		})
	}
}

// authVerifyHandler はトークン検証の疎通確認用。検証済みユーザーをそのまま返す。
func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status": "ok",
			"user":   user,
		})
	}
}
