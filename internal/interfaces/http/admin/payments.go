package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
)

type paymentResponse struct {
	ID          string `json:"id"`
	PayerEmail  string `json:"payerEmail"`
	AmountCents int64  `json:"amountCents"`
	IntentID    string `json:"intentId,omitempty"`
	ReceiptID   string `json:"receiptId"`
	CreatedAt   string `json:"createdAt"`
}

// paymentListHandler は決済台帳の全レコードを返す。台帳は追記専用で編集 API は存在しない。
func (h *Handler) paymentListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := h.paymentService.List(ctx)
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "決済一覧の取得に失敗しました")
			return
		}

		responses := make([]paymentResponse, 0, len(records))
		for _, record := range records {
			responses = append(responses, paymentResponse{
				ID:          record.ID,
				PayerEmail:  record.PayerEmail,
				AmountCents: record.AmountCents,
				IntentID:    record.IntentID,
				ReceiptID:   record.ReceiptID,
				CreatedAt:   record.CreatedAt.Format(time.RFC3339),
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, responses)
	}
}
