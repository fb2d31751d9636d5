package public

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
)

// paymentIntentHandler は外部プロセッサへ決済インテントを作成し、クライアント確認用
// アーティファクトを返す。コアは決済の成否をここでは関知しない。
func (h *Handler) paymentIntentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var req paymentIntentRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}
		if req.Price <= 0 {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "金額が不正です"})
			return
		}

		amountCents := int64(math.Round(req.Price * 100))
		intent, err := h.processor.CreateIntent(ctx, amountCents)
		if err != nil {
			h.logger.Printf("決済インテントの作成に失敗: %v", err)
			common.WriteJSON(h.logger, w, http.StatusBadGateway, map[string]string{"error": "決済インテントの作成に失敗しました"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, paymentIntentResponse{
			IntentID:     intent.ID,
			ClientSecret: intent.ClientSecret,
		})
	}
}

// paymentNotificationHandler は決済完了通知を受け、台帳追記と pro_user への昇格を行う。
// 支払者はトークンの email とし、通知はプロセッサへの照会で確定済みと確認できた場合のみ受理する。
// 台帳に残る金額も照会で得たプロセッサ側の記録値であり、ボディの price は参考値にすぎない。
func (h *Handler) paymentNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		var req paymentNotificationRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		record, err := h.entitlements.PromoteOnPayment(ctx, application.PaymentNotification{
			PayerEmail:  user.Email,
			AmountCents: int64(math.Round(req.Price * 100)),
			IntentID:    req.IntentID,
		})
		if err != nil {
			common.WriteDomainError(h.logger, w, err, "決済通知の処理に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildPaymentRecord(*record))
	}
}
