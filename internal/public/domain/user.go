package domain

import "time"

// Role はユーザーの権限ティア。単一値フィールドであり、同時に保持できるのは 1 ティアのみ。
type Role string

const (
	RoleNone     Role = ""
	RoleSurveyor Role = "surveyor"
	RoleAdmin    Role = "admin"
	RoleProUser  Role = "pro_user"
)

// ValidRole は管理操作で設定可能なロールか判定する。RoleNone は剥奪として許可する。
func ValidRole(role Role) bool {
	switch role {
	case RoleNone, RoleSurveyor, RoleAdmin, RoleProUser:
		return true
	}
	return false
}

// Capabilities はロールから導出される権限フラグの組。
// ロールが単一値のため、真になるフラグは常に高々 1 つ。
type Capabilities struct {
	IsAdmin    bool
	IsSurveyor bool
	IsProUser  bool
}

// CapabilitiesOf はロールを権限フラグへ写像する。
func CapabilitiesOf(role Role) Capabilities {
	return Capabilities{
		IsAdmin:    role == RoleAdmin,
		IsSurveyor: role == RoleSurveyor,
		IsProUser:  role == RoleProUser,
	}
}

// User はメールアドレスを自然キーとするアカウント。初回サインイン時に冪等に作成される。
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}
