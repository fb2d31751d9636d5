package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

func NewRoleEntitlementService(users UserRepository, payments PaymentRepository, processor PaymentProcessor) RoleEntitlementService {
	return &roleEntitlementService{users: users, payments: payments, processor: processor}
}

type roleEntitlementService struct {
	users     UserRepository
	payments  PaymentRepository
	processor PaymentProcessor
}

// Capabilities はロールを権限フラグへ写像する。未登録ユーザーは全フラグ false として扱う。
func (s *roleEntitlementService) Capabilities(ctx context.Context, email string) (domain.Capabilities, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Capabilities{}, nil
	}
	if err != nil {
		return domain.Capabilities{}, err
	}
	return domain.CapabilitiesOf(user.Role), nil
}

// SetRole は対象ユーザーのロールを無条件に置き換える。履歴は残さない last-writer-wins。
// 呼び出し元が admin であることの検証は HTTP 層の責務。
func (s *roleEntitlementService) SetRole(ctx context.Context, targetID string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.users.UpdateRole(ctx, strings.TrimSpace(targetID), role)
}

// PromoteOnPayment は決済完了通知を台帳へ追記し、支払者を pro_user へ昇格させる。
// 昇格の前にプロセッサへサーバー間照会を行い、決済が確定していない通知は拒否する。
// 台帳追記とロール書き込みは独立した 2 書き込みであり原子性はない。途中で失敗した場合は
// 通知の再送（at-least-once）で回復する。重複通知はレコードが増えるだけで昇格は冪等。
func (s *roleEntitlementService) PromoteOnPayment(ctx context.Context, notification PaymentNotification) (*domain.PaymentRecord, error) {
	payer := strings.TrimSpace(notification.PayerEmail)
	if payer == "" {
		return nil, fmt.Errorf("%w: payer email must not be empty", domain.ErrInvalidInput)
	}

	amount := notification.AmountCents
	if s.processor != nil {
		settlement, err := s.processor.Settlement(ctx, notification.IntentID)
		if err != nil {
			return nil, fmt.Errorf("payment settlement lookup: %w", err)
		}
		if !settlement.Settled {
			return nil, domain.ErrPaymentUnsettled
		}
		// 台帳に残す金額は通知の申告額ではなくプロセッサ側の記録値。
		amount = settlement.AmountCents
	}

	record := &domain.PaymentRecord{
		PayerEmail:  payer,
		AmountCents: amount,
		IntentID:    notification.IntentID,
		ReceiptID:   uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}

	// レコードを先に追記する。ロール書き込み前に落ちても支払いの証跡が残り、
	// 「PaymentRecord が 1 件以上あるか」からロールを再導出できる。
	if err := s.payments.Append(ctx, record); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRoleByEmail(ctx, payer, domain.RoleProUser); err != nil {
		return record, err
	}
	return record, nil
}

// EnsureUser は初回サインイン時の insert-if-new。既存ユーザーには何もしない。
func (s *roleEntitlementService) EnsureUser(ctx context.Context, email, name string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, fmt.Errorf("%w: email must not be empty", domain.ErrInvalidInput)
	}
	return s.users.EnsureUser(ctx, email, strings.TrimSpace(name))
}
