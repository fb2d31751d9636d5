package application

import (
	"context"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

// UserRepository abstracts admin-side user access.
// UserRepository は管理コンテキストでユーザー一覧・削除を行うポート。
type UserRepository interface {
	Find(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SurveyRepository exposes the unfiltered survey collection to admins.
type SurveyRepository interface {
	FindAll(ctx context.Context) ([]domain.Survey, error)
}

// PaymentRepository lists the append-only payment ledger.
type PaymentRepository interface {
	Find(ctx context.Context) ([]domain.PaymentRecord, error)
}

// UserService describes admin user-management use-cases.
// ロール変更は公開側の RoleEntitlementService が担い、ここでは扱わない。
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SurveyService describes the admin survey read surface (drafts included).
type SurveyService interface {
	List(ctx context.Context) ([]domain.Survey, error)
}

// PaymentService exposes the payment ledger to admins.
type PaymentService interface {
	List(ctx context.Context) ([]domain.PaymentRecord, error)
}
