package public

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	"github.com/surveynest/surveynest-services/api/internal/public/application"
	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type stubEngagement struct {
	appendFn func(cmd application.AppendContributionCommand) (bool, error)
	reactFn  func(surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error)
}

func (s *stubEngagement) AppendUnique(ctx context.Context, cmd application.AppendContributionCommand) (bool, error) {
	return s.appendFn(cmd)
}

func (s *stubEngagement) React(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error) {
	return s.reactFn(surveyID, reaction)
}

type stubEntitlements struct {
	caps     domain.Capabilities
	lookedUp string
}

func (s *stubEntitlements) Capabilities(ctx context.Context, email string) (domain.Capabilities, error) {
	s.lookedUp = email
	return s.caps, nil
}

func (s *stubEntitlements) SetRole(ctx context.Context, targetID string, role domain.Role) error {
	return nil
}

func (s *stubEntitlements) PromoteOnPayment(ctx context.Context, n application.PaymentNotification) (*domain.PaymentRecord, error) {
	return nil, domain.ErrPaymentUnsettled
}

func (s *stubEntitlements) EnsureUser(ctx context.Context, email, name string) (bool, error) {
	return false, nil
}

// stubAuth はトークン検証を通過した状態を再現するテスト用ミドルウェア。
func stubAuth(email string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := common.ContextWithUser(r.Context(), common.AuthenticatedUser{Email: email, Name: "テスト"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T, engagement application.EngagementService, entitlements application.RoleEntitlementService, actorEmail string) *chi.Mux {
	t.Helper()
	if entitlements == nil {
		entitlements = &stubEntitlements{}
	}
	handler := NewHandler(Config{
		Logger:       log.New(&strings.Builder{}, "", 0),
		Engagement:   engagement,
		Entitlements: entitlements,
	})
	router := chi.NewRouter()
	handler.Register(router, stubAuth(actorEmail))
	return router
}

func TestContributionHandlerAppliesVote(t *testing.T) {
	engagement := &stubEngagement{
		appendFn: func(cmd application.AppendContributionCommand) (bool, error) {
			assert.Equal(t, "abc123", cmd.SurveyID)
			assert.Equal(t, domain.KindVote, cmd.Kind)
			// 行為者はトークン由来でありボディの申告は無視される。
			assert.Equal(t, "voter@example.com", cmd.ActorEmail)
			assert.Equal(t, "udon", cmd.Choice)
			return true, nil
		},
	}
	router := newTestRouter(t, engagement, nil, "voter@example.com")

	req := httptest.NewRequest(http.MethodPut, "/surveys/abc123/vote", strings.NewReader(`{"choice":"udon"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body appendResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Applied)
}

func TestContributionHandlerDuplicateConflict(t *testing.T) {
	engagement := &stubEngagement{
		appendFn: func(cmd application.AppendContributionCommand) (bool, error) {
			return false, domain.ErrAlreadyContributed
		},
	}
	router := newTestRouter(t, engagement, nil, "voter@example.com")

	req := httptest.NewRequest(http.MethodPatch, "/surveys/abc123/comment", strings.NewReader(`{"message":"二度目"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body appendResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Applied)
}

func TestContributionHandlerSurveyNotFound(t *testing.T) {
	engagement := &stubEngagement{
		appendFn: func(cmd application.AppendContributionCommand) (bool, error) {
			return false, domain.ErrSurveyNotFound
		},
	}
	router := newTestRouter(t, engagement, nil, "voter@example.com")

	req := httptest.NewRequest(http.MethodPut, "/surveys/missing/vote", strings.NewReader(`{"choice":"udon"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContributionHandlerRejectsBrokenBody(t *testing.T) {
	called := false
	engagement := &stubEngagement{
		appendFn: func(cmd application.AppendContributionCommand) (bool, error) {
			called = true
			return true, nil
		},
	}
	router := newTestRouter(t, engagement, nil, "voter@example.com")

	req := httptest.NewRequest(http.MethodPut, "/surveys/abc123/vote", strings.NewReader(`{"choice":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestReactionHandlerReturnsCounters(t *testing.T) {
	engagement := &stubEngagement{
		reactFn: func(surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error) {
			assert.Equal(t, domain.ReactionLike, reaction)
			return domain.SurveyCounters{Voted: 3, Like: 8, Dislike: 1}, nil
		},
	}
	router := newTestRouter(t, engagement, nil, "")

	// リアクションは匿名で打てる。
	req := httptest.NewRequest(http.MethodPatch, "/surveys/abc123/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body countersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 8, body.LikeCount)
	assert.Equal(t, 3, body.VotedCount)
}

func TestCapabilitiesHandlerSelfOnly(t *testing.T) {
	entitlements := &stubEntitlements{caps: domain.Capabilities{IsProUser: true}}
	router := newTestRouter(t, &stubEngagement{}, entitlements, "me@example.com")

	req := httptest.NewRequest(http.MethodGet, "/users/capabilities/me@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body capabilitiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.IsProUser)
	assert.False(t, body.IsAdmin)

	req = httptest.NewRequest(http.MethodGet, "/users/capabilities/other@example.com", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// パスの表記揺れ（大文字小文字）で本人照会を通した場合も、検索キーはトークンの email に揃う。
func TestCapabilitiesHandlerNormalizesLookupEmail(t *testing.T) {
	entitlements := &stubEntitlements{caps: domain.Capabilities{IsAdmin: true}}
	router := newTestRouter(t, &stubEngagement{}, entitlements, "me@example.com")

	req := httptest.NewRequest(http.MethodGet, "/users/capabilities/ME@EXAMPLE.COM", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "me@example.com", entitlements.lookedUp)
	var body capabilitiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.IsAdmin)
}
