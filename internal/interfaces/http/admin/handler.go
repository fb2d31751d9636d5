package admin

import (
	"log"

	"github.com/go-chi/chi/v5"
	adminapp "github.com/surveynest/surveynest-services/api/internal/admin/application"
	publicapp "github.com/surveynest/surveynest-services/api/internal/public/application"
)

// Handler wires admin HTTP endpoints to application services.
// 認証と admin 権限の検証はルート側のミドルウェアが済ませている前提で動く。
type Handler struct {
	logger         *log.Logger
	userService    adminapp.UserService
	surveyService  adminapp.SurveyService
	paymentService adminapp.PaymentService
	entitlements   publicapp.RoleEntitlementService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger         *log.Logger
	UserService    adminapp.UserService
	SurveyService  adminapp.SurveyService
	PaymentService adminapp.PaymentService
	Entitlements   publicapp.RoleEntitlementService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:         cfg.Logger,
		userService:    cfg.UserService,
		surveyService:  cfg.SurveyService,
		paymentService: cfg.PaymentService,
		entitlements:   cfg.Entitlements,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.userListHandler())
	r.Patch("/users/{id}/role", h.userRoleHandler())
	r.Delete("/users/{id}", h.userDeleteHandler())
	r.Get("/surveys", h.surveyListHandler())
	r.Get("/payments", h.paymentListHandler())
}
