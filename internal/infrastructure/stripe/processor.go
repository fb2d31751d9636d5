package stripe

import (
	"context"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
)

// Processor は Stripe を外部決済プロセッサとして扱うアダプタ。
// インテント作成とサーバー間での決済確定照会のみを提供し、それ以外の決済機能には関与しない。
type Processor struct {
	api *client.API
}

func NewProcessor(secretKey string) *Processor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Processor{api: api}
}

// CreateIntent は指定金額のカード決済インテントを作成し、クライアント確認用アーティファクトを返す。
func (p *Processor) CreateIntent(ctx context.Context, amountCents int64) (application.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Params:             stripeapi.Params{Context: ctx},
		Amount:             stripeapi.Int64(amountCents),
		Currency:           stripeapi.String(string(stripeapi.CurrencyUSD)),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return application.PaymentIntent{}, err
	}

	return application.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Settlement はインテントをサーバー間で照会し、確定状態と Stripe 側の記録金額を返す。
// クライアント起点の完了通知（状態・金額とも）を鵜呑みにしないための確認経路。
func (p *Processor) Settlement(ctx context.Context, intentID string) (application.PaymentSettlement, error) {
	params := &stripeapi.PaymentIntentParams{Params: stripeapi.Params{Context: ctx}}
	intent, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return application.PaymentSettlement{}, err
	}
	return application.PaymentSettlement{
		Settled:     intent.Status == stripeapi.PaymentIntentStatusSucceeded,
		AmountCents: intent.Amount,
	}, nil
}
