package application

import (
	"context"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

// SurveyRepository handles survey reads and conditional writes.
// SurveyRepository はアンケート集約の読み取りと条件付き更新を提供するポート。
// AppendContribution と IncrementReaction はストア側の原子的な条件付き更新で実装されること。
type SurveyRepository interface {
	FindPublished(ctx context.Context) ([]domain.Survey, error)
	FindByOwner(ctx context.Context, email string) ([]domain.Survey, error)
	FindWithFeedback(ctx context.Context, email string, kind domain.ContributionKind) ([]domain.Survey, error)
	FindByID(ctx context.Context, id string) (*domain.Survey, error)
	Create(ctx context.Context, survey *domain.Survey) error
	Publish(ctx context.Context, id string) error
	AppendContribution(ctx context.Context, surveyID string, kind domain.ContributionKind, entry domain.Contribution) error
	IncrementReaction(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error)
}

// UserRepository abstracts user persistence.
// UserRepository はユーザードキュメントの読み書きを提供するポート。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EnsureUser(ctx context.Context, email, name string) (bool, error)
	UpdateRole(ctx context.Context, targetID string, role domain.Role) error
	UpdateRoleByEmail(ctx context.Context, email string, role domain.Role) error
}

// PaymentRepository appends completed-payment records.
type PaymentRepository interface {
	Append(ctx context.Context, record *domain.PaymentRecord) error
}

// PaymentIntent is the opaque client-side confirmation artifact returned by the processor.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentSettlement is the processor-side record of one intent.
// 金額はプロセッサに記録された値であり、クライアント申告より常に優先する。
type PaymentSettlement struct {
	Settled     bool
	AmountCents int64
}

// PaymentProcessor is the external payment collaborator.
// PaymentProcessor は外部決済プロセッサとの境界。Settlement はサーバー間照会による決済確定の確認。
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amountCents int64) (PaymentIntent, error)
	Settlement(ctx context.Context, intentID string) (PaymentSettlement, error)
}

// AppendContributionCommand captures one engagement-ledger append.
type AppendContributionCommand struct {
	SurveyID   string
	Kind       domain.ContributionKind
	ActorEmail string
	Choice     string
	Message    string
}

// EngagementService enforces at-most-one-contribution-per-actor-per-kind.
// EngagementService は寄与の一意追記とカウンタの同期を担うユースケース。
type EngagementService interface {
	AppendUnique(ctx context.Context, cmd AppendContributionCommand) (bool, error)
	React(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error)
}

// SurveyQueryService describes the read-side projections.
// SurveyQueryService はアンケート参照ユースケースを提供するリーダーモデル。
type SurveyQueryService interface {
	ListPublished(ctx context.Context) ([]domain.Survey, error)
	ListByOwner(ctx context.Context, email string) ([]domain.Survey, error)
	ListWithFeedbackKind(ctx context.Context, email string, kind domain.ContributionKind) ([]domain.Survey, error)
	Detail(ctx context.Context, id, viewerEmail string) (*domain.Survey, bool, error)
}

// SubmitSurveyCommand captures owner input for a new draft survey.
type SubmitSurveyCommand struct {
	OwnerEmail  string
	Title       string
	Category    string
	Description string
}

// SurveyCommandService handles survey lifecycle writes.
type SurveyCommandService interface {
	Submit(ctx context.Context, cmd SubmitSurveyCommand) (*domain.Survey, error)
	Publish(ctx context.Context, surveyID, actorEmail string) error
}

// PaymentNotification is a completed-payment notification from the client side.
type PaymentNotification struct {
	PayerEmail  string
	AmountCents int64
	IntentID    string
}

// RoleEntitlementService computes and mutates capability tiers.
// RoleEntitlementService は権限ティアの導出・変更と決済起点の昇格を担うユースケース。
type RoleEntitlementService interface {
	Capabilities(ctx context.Context, email string) (domain.Capabilities, error)
	SetRole(ctx context.Context, targetID string, role domain.Role) error
	PromoteOnPayment(ctx context.Context, notification PaymentNotification) (*domain.PaymentRecord, error)
	EnsureUser(ctx context.Context, email, name string) (bool, error)
}
