package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	surveyQueries  application.SurveyQueryService
	surveyCommands application.SurveyCommandService
	engagement     application.EngagementService
	entitlements   application.RoleEntitlementService
	processor      application.PaymentProcessor
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	SurveyQueries  application.SurveyQueryService
	SurveyCommands application.SurveyCommandService
	Engagement     application.EngagementService
	Entitlements   application.RoleEntitlementService
	Processor      application.PaymentProcessor
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:         cfg.Logger,
		surveyQueries:  cfg.SurveyQueries,
		surveyCommands: cfg.SurveyCommands,
		engagement:     cfg.Engagement,
		entitlements:   cfg.Entitlements,
		processor:      cfg.Processor,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/surveys", h.surveyListHandler())
	r.Get("/surveys/feedback/{email}", h.surveyFeedbackListHandler())
	r.Get("/surveys/{id}", h.surveyDetailHandler())
	r.With(authMiddleware).Get("/surveys/mine", h.mySurveyListHandler())
	r.With(authMiddleware).Post("/surveys", h.surveyCreateHandler())
	r.With(authMiddleware).Patch("/surveys/{id}/publish", h.surveyPublishHandler())

	r.With(authMiddleware).Put("/surveys/{id}/vote", h.contributionHandler(voteContribution))
	r.With(authMiddleware).Patch("/surveys/{id}/report", h.contributionHandler(reportContribution))
	r.With(authMiddleware).Patch("/surveys/{id}/comment", h.contributionHandler(commentContribution))
	r.Patch("/surveys/{id}/like", h.reactionHandler(likeReaction))
	r.Patch("/surveys/{id}/dislike", h.reactionHandler(dislikeReaction))

	r.Post("/users", h.userUpsertHandler())
	r.With(authMiddleware).Get("/users/capabilities/{email}", h.capabilitiesHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())

	r.With(authMiddleware).Post("/payments/intent", h.paymentIntentHandler())
	r.With(authMiddleware).Post("/payments", h.paymentNotificationHandler())
}
