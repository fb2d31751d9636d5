package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

// fakeSurveyRepository は本番リポジトリと同じ条件付き更新の契約を
// ミューテックス 1 本で再現するインメモリ実装。
type fakeSurveyRepository struct {
	mu      sync.Mutex
	nextID  int
	surveys map[string]*domain.Survey
}

func newFakeSurveyRepository() *fakeSurveyRepository {
	return &fakeSurveyRepository{surveys: map[string]*domain.Survey{}}
}

func (r *fakeSurveyRepository) seed(survey domain.Survey) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := "survey-" + strconv.Itoa(r.nextID)
	survey.ID = id
	r.surveys[id] = &survey
	return id
}

func (r *fakeSurveyRepository) get(id string) domain.Survey {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.surveys[id]
}

func (r *fakeSurveyRepository) FindPublished(ctx context.Context) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Survey
	for _, s := range r.surveys {
		if s.Status == domain.StatusPublished {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSurveyRepository) FindByOwner(ctx context.Context, email string) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Survey
	for _, s := range r.surveys {
		if s.OwnerEmail == email {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSurveyRepository) FindWithFeedback(ctx context.Context, email string, kind domain.ContributionKind) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Survey
	for _, s := range r.surveys {
		if s.OwnerEmail != email {
			continue
		}
		switch kind {
		case domain.KindReport:
			if len(s.Reports) > 0 {
				out = append(out, *s)
			}
		case domain.KindComment:
			if len(s.Comments) > 0 {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

func (r *fakeSurveyRepository) FindByID(ctx context.Context, id string) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, domain.ErrSurveyNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSurveyRepository) Create(ctx context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	survey.ID = "survey-" + strconv.Itoa(r.nextID)
	copied := *survey
	r.surveys[survey.ID] = &copied
	return nil
}

func (r *fakeSurveyRepository) Publish(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return domain.ErrSurveyNotFound
	}
	if s.Status == domain.StatusPublished {
		return domain.ErrAlreadyPublished
	}
	s.Status = domain.StatusPublished
	return nil
}

// AppendContribution は存在確認・重複確認・追記・カウンタ加算を単一クリティカル
// セクションで行う。並行呼び出しで勝者がちょうど 1 つになる契約を検証するための実装。
func (r *fakeSurveyRepository) AppendContribution(ctx context.Context, surveyID string, kind domain.ContributionKind, entry domain.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[surveyID]
	if !ok {
		return domain.ErrSurveyNotFound
	}
	now := time.Now().UTC()
	switch kind {
	case domain.KindVote:
		for _, v := range s.Votes {
			if v.ActorEmail == entry.ActorEmail {
				return domain.ErrAlreadyContributed
			}
		}
		s.Votes = append(s.Votes, domain.Vote{ActorEmail: entry.ActorEmail, Choice: entry.Choice, CreatedAt: now})
		s.Counters.Voted++
	case domain.KindReport:
		for _, f := range s.Reports {
			if f.ActorEmail == entry.ActorEmail {
				return domain.ErrAlreadyContributed
			}
		}
		s.Reports = append(s.Reports, domain.Feedback{ActorEmail: entry.ActorEmail, Message: entry.Message, CreatedAt: now})
		s.Counters.Report++
	case domain.KindComment:
		for _, f := range s.Comments {
			if f.ActorEmail == entry.ActorEmail {
				return domain.ErrAlreadyContributed
			}
		}
		s.Comments = append(s.Comments, domain.Feedback{ActorEmail: entry.ActorEmail, Message: entry.Message, CreatedAt: now})
		s.Counters.Comment++
	default:
		return fmt.Errorf("%w: unknown contribution kind %q", domain.ErrInvalidInput, kind)
	}
	return nil
}

func (r *fakeSurveyRepository) IncrementReaction(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[surveyID]
	if !ok {
		return domain.SurveyCounters{}, domain.ErrSurveyNotFound
	}
	switch reaction {
	case domain.ReactionLike:
		s.Counters.Like++
	case domain.ReactionDislike:
		s.Counters.Dislike++
	}
	return s.Counters, nil
}

type fakeUserRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User // keyed by email
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*domain.User{}}
}

func (r *fakeUserRepository) seed(email, name string, role domain.Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := "user-" + strconv.Itoa(r.nextID)
	r.users[email] = &domain.User{ID: id, Email: email, Name: name, Role: role, CreatedAt: time.Now().UTC()}
	return id
}

func (r *fakeUserRepository) roleOf(email string) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return domain.RoleNone
	}
	return u.Role
}

func (r *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepository) EnsureUser(ctx context.Context, email, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return false, nil
	}
	r.nextID++
	r.users[email] = &domain.User{
		ID:        "user-" + strconv.Itoa(r.nextID),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (r *fakeUserRepository) UpdateRole(ctx context.Context, targetID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == targetID {
			u.Role = role
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *fakeUserRepository) UpdateRoleByEmail(ctx context.Context, email string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.Role = role
		return nil
	}
	r.nextID++
	r.users[email] = &domain.User{
		ID:        "user-" + strconv.Itoa(r.nextID),
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

type fakePaymentRepository struct {
	mu      sync.Mutex
	records []domain.PaymentRecord
}

func (r *fakePaymentRepository) Append(ctx context.Context, record *domain.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = "payment-" + strconv.Itoa(len(r.records)+1)
	r.records = append(r.records, *record)
	return nil
}

func (r *fakePaymentRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakeProcessor は決済確定照会の結果を固定値で返すスタブ。
// settled は確定済みインテント ID からプロセッサ側の記録金額への写像。
type fakeProcessor struct {
	settled map[string]int64
}

func (p *fakeProcessor) CreateIntent(ctx context.Context, amountCents int64) (PaymentIntent, error) {
	return PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (p *fakeProcessor) Settlement(ctx context.Context, intentID string) (PaymentSettlement, error) {
	amount, ok := p.settled[intentID]
	return PaymentSettlement{Settled: ok, AmountCents: amount}, nil
}
