package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

func TestCapabilitiesReflectsRole(t *testing.T) {
	users := newFakeUserRepository()
	users.seed("admin@example.com", "管理者", domain.RoleAdmin)
	users.seed("surveyor@example.com", "調査員", domain.RoleSurveyor)
	users.seed("pro@example.com", "有料会員", domain.RoleProUser)
	users.seed("plain@example.com", "一般", domain.RoleNone)
	svc := NewRoleEntitlementService(users, &fakePaymentRepository{}, nil)

	cases := []struct {
		email string
		want  domain.Capabilities
	}{
		{"admin@example.com", domain.Capabilities{IsAdmin: true}},
		{"surveyor@example.com", domain.Capabilities{IsSurveyor: true}},
		{"pro@example.com", domain.Capabilities{IsProUser: true}},
		{"plain@example.com", domain.Capabilities{}},
	}
	for _, tc := range cases {
		caps, err := svc.Capabilities(context.Background(), tc.email)
		require.NoError(t, err)
		assert.Equal(t, tc.want, caps, tc.email)
	}
}

// 未登録ユーザーはエラーではなく全フラグ false として扱う。
func TestCapabilitiesMissingUser(t *testing.T) {
	svc := NewRoleEntitlementService(newFakeUserRepository(), &fakePaymentRepository{}, nil)

	caps, err := svc.Capabilities(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.Capabilities{}, caps)
}

func TestSetRoleReplacesPreviousRole(t *testing.T) {
	users := newFakeUserRepository()
	id := users.seed("member@example.com", "会員", domain.RoleSurveyor)
	svc := NewRoleEntitlementService(users, &fakePaymentRepository{}, nil)

	require.NoError(t, svc.SetRole(context.Background(), id, domain.RoleAdmin))
	assert.Equal(t, domain.RoleAdmin, users.roleOf("member@example.com"))

	// RoleNone は剥奪として許可する。
	require.NoError(t, svc.SetRole(context.Background(), id, domain.RoleNone))
	assert.Equal(t, domain.RoleNone, users.roleOf("member@example.com"))
}

func TestSetRoleValidation(t *testing.T) {
	users := newFakeUserRepository()
	id := users.seed("member@example.com", "会員", domain.RoleNone)
	svc := NewRoleEntitlementService(users, &fakePaymentRepository{}, nil)

	err := svc.SetRole(context.Background(), id, domain.Role("superuser"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.SetRole(context.Background(), "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPromoteOnPaymentRecordsAndPromotes(t *testing.T) {
	users := newFakeUserRepository()
	users.seed("payer@example.com", "支払者", domain.RoleNone)
	payments := &fakePaymentRepository{}
	processor := &fakeProcessor{settled: map[string]int64{"pi_ok": 4000}}
	svc := NewRoleEntitlementService(users, payments, processor)

	record, err := svc.PromoteOnPayment(context.Background(), PaymentNotification{
		PayerEmail:  "payer@example.com",
		AmountCents: 4000,
		IntentID:    "pi_ok",
	})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotEmpty(t, record.ReceiptID)
	assert.Equal(t, int64(4000), record.AmountCents)
	assert.Equal(t, 1, payments.count())
	assert.Equal(t, domain.RoleProUser, users.roleOf("payer@example.com"))
}

// 台帳に残る金額はプロセッサ側の記録値。通知の申告額が食い違っても無視される。
func TestPromoteOnPaymentRecordsProcessorAmount(t *testing.T) {
	users := newFakeUserRepository()
	users.seed("payer@example.com", "支払者", domain.RoleNone)
	payments := &fakePaymentRepository{}
	processor := &fakeProcessor{settled: map[string]int64{"pi_ok": 4000}}
	svc := NewRoleEntitlementService(users, payments, processor)

	record, err := svc.PromoteOnPayment(context.Background(), PaymentNotification{
		PayerEmail:  "payer@example.com",
		AmountCents: 100,
		IntentID:    "pi_ok",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), record.AmountCents)
}

// 重複通知はレコードが増えるだけで昇格は冪等。
func TestPromoteOnPaymentDuplicateNotification(t *testing.T) {
	users := newFakeUserRepository()
	users.seed("payer@example.com", "支払者", domain.RoleNone)
	payments := &fakePaymentRepository{}
	processor := &fakeProcessor{settled: map[string]int64{"pi_ok": 4000}}
	svc := NewRoleEntitlementService(users, payments, processor)

	notification := PaymentNotification{PayerEmail: "payer@example.com", AmountCents: 4000, IntentID: "pi_ok"}
	first, err := svc.PromoteOnPayment(context.Background(), notification)
	require.NoError(t, err)
	second, err := svc.PromoteOnPayment(context.Background(), notification)
	require.NoError(t, err)

	assert.NotEqual(t, first.ReceiptID, second.ReceiptID)
	assert.Equal(t, 2, payments.count())
	assert.Equal(t, domain.RoleProUser, users.roleOf("payer@example.com"))
}

// 未確定の決済通知は台帳にもロールにも触れずに拒否する。
func TestPromoteOnPaymentUnsettled(t *testing.T) {
	users := newFakeUserRepository()
	users.seed("payer@example.com", "支払者", domain.RoleNone)
	payments := &fakePaymentRepository{}
	processor := &fakeProcessor{settled: map[string]int64{}}
	svc := NewRoleEntitlementService(users, payments, processor)

	record, err := svc.PromoteOnPayment(context.Background(), PaymentNotification{
		PayerEmail:  "payer@example.com",
		AmountCents: 4000,
		IntentID:    "pi_pending",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentUnsettled)
	assert.Nil(t, record)
	assert.Equal(t, 0, payments.count())
	assert.Equal(t, domain.RoleNone, users.roleOf("payer@example.com"))
}

// サインイン前に支払った場合もロール書き込みが upsert でユーザーを作る。
func TestPromoteOnPaymentUnknownPayer(t *testing.T) {
	users := newFakeUserRepository()
	payments := &fakePaymentRepository{}
	processor := &fakeProcessor{settled: map[string]int64{"pi_ok": 4000}}
	svc := NewRoleEntitlementService(users, payments, processor)

	_, err := svc.PromoteOnPayment(context.Background(), PaymentNotification{
		PayerEmail:  "new@example.com",
		AmountCents: 4000,
		IntentID:    "pi_ok",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProUser, users.roleOf("new@example.com"))
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	users := newFakeUserRepository()
	svc := NewRoleEntitlementService(users, &fakePaymentRepository{}, nil)

	created, err := svc.EnsureUser(context.Background(), "first@example.com", "初回")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(context.Background(), "first@example.com", "別名")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.EnsureUser(context.Background(), "  ", "空")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
