package public

import (
	"encoding/json"
	"net/http"

	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
)

// decodeJSON はリクエストボディを上限付きでデコードする。失敗時はレスポンス済みで false を返す。
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, common.MaxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "リクエストボディの形式が不正です"})
		return false
	}
	return true
}
