package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

func NewSurveyCommandService(surveys SurveyRepository, entitlements RoleEntitlementService) SurveyCommandService {
	return &surveyCommandService{surveys: surveys, entitlements: entitlements}
}

type surveyCommandService struct {
	surveys      SurveyRepository
	entitlements RoleEntitlementService
}

// Submit は所有者名義の下書きアンケートを作成する。作成時刻はサーバー側で採番し以後不変。
func (s *surveyCommandService) Submit(ctx context.Context, cmd SubmitSurveyCommand) (*domain.Survey, error) {
	owner := strings.TrimSpace(cmd.OwnerEmail)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner email must not be empty", domain.ErrInvalidInput)
	}
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
	}

	survey := &domain.Survey{
		OwnerEmail:  owner,
		Title:       title,
		Category:    strings.TrimSpace(cmd.Category),
		Description: strings.TrimSpace(cmd.Description),
		Status:      domain.StatusDraft,
		CreatedAt:   time.Now().UTC(),
	}

	return survey, s.surveys.Create(ctx, survey)
}

// Publish は draft から published への一方向遷移を行う。所有者本人か admin のみ許可。
// 遷移自体はリポジトリの条件付き更新で行い、公開済みへの再適用は ErrAlreadyPublished になる。
func (s *surveyCommandService) Publish(ctx context.Context, surveyID, actorEmail string) error {
	actor := strings.TrimSpace(actorEmail)
	if actor == "" {
		return fmt.Errorf("%w: actor email must not be empty", domain.ErrInvalidInput)
	}

	survey, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return err
	}

	if survey.OwnerEmail != actor {
		caps, err := s.entitlements.Capabilities(ctx, actor)
		if err != nil {
			return err
		}
		if !caps.IsAdmin {
			return domain.ErrForbidden
		}
	}

	return s.surveys.Publish(ctx, surveyID)
}
