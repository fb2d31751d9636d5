package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// userListHandler は全ユーザーの一覧を返す。
func (h *Handler) userListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		users, err := h.userService.List(ctx)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "ユーザー一覧の取得に失敗しました")
			return
		}

		responses := make([]userResponse, 0, len(users))
		for _, user := range users {
			responses = append(responses, userResponse{
				ID:        user.ID,
				Email:     user.Email,
				Name:      user.Name,
				Role:      string(user.Role),
				CreatedAt: user.CreatedAt.Format(time.RFC3339),
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, responses)
	}
}

// userRoleHandler は対象ユーザーのロールを置き換える。履歴は残さない上書き。
func (h *Handler) userRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var req setRoleRequest
		r.Body = http.MaxBytesReader(w, r.Body, common.MaxRequestBody)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "リクエストボディの形式が不正です"})
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if err := h.entitlements.SetRole(ctx, id, domain.Role(strings.TrimSpace(req.Role))); err != nil {
			common.WriteDomainError(h.logger, w, err, "ロールの変更に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"role": req.Role})
	}
}

// userDeleteHandler は対象ユーザーを削除する。
func (h *Handler) userDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if err := h.userService.Delete(ctx, id); err != nil {
			common.WriteDomainError(h.logger, w, err, "ユーザーの削除に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
