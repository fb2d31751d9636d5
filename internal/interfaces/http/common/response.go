package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// WriteDomainError はドメインエラーを HTTP ステータスへ翻訳して返す。
// コア側は一切リトライしない方針のため、再試行可能な失敗は 503 として呼び出し元に委ねる。
func WriteDomainError(logger *log.Logger, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSurveyNotFound), errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyContributed), errors.Is(err, domain.ErrAlreadyPublished):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPaymentUnsettled):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError && logger != nil {
		logger.Printf("%s: %v", message, err)
	}

	WriteJSON(logger, w, status, map[string]string{"error": message})
}
