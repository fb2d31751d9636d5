package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

func NewSurveyQueryService(repo SurveyRepository) SurveyQueryService {
	return &surveyQueryService{repo: repo}
}

type surveyQueryService struct {
	repo SurveyRepository
}

// ListPublished は公開済みアンケートのみを返す射影。
func (s *surveyQueryService) ListPublished(ctx context.Context) ([]domain.Survey, error) {
	return s.repo.FindPublished(ctx)
}

// ListByOwner は所有者メールアドレスで絞り込んだ一覧を返す。下書きも含む。
func (s *surveyQueryService) ListByOwner(ctx context.Context, email string) ([]domain.Survey, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: owner email must not be empty", domain.ErrInvalidInput)
	}
	return s.repo.FindByOwner(ctx, email)
}

// ListWithFeedbackKind は指定種別のフィードバックが 1 件以上あるアンケートを所有者別に返す。
func (s *surveyQueryService) ListWithFeedbackKind(ctx context.Context, email string, kind domain.ContributionKind) ([]domain.Survey, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: owner email must not be empty", domain.ErrInvalidInput)
	}
	if kind != domain.KindReport && kind != domain.KindComment {
		return nil, fmt.Errorf("%w: feedback kind must be report or comment, got %q", domain.ErrInvalidInput, kind)
	}
	return s.repo.FindWithFeedback(ctx, email, kind)
}

// Detail は単一アンケートと、閲覧者が投票済みかどうかのフラグを返す。
func (s *surveyQueryService) Detail(ctx context.Context, id, viewerEmail string) (*domain.Survey, bool, error) {
	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	voted := false
	if viewer := strings.TrimSpace(viewerEmail); viewer != "" {
		voted = survey.HasVoted(viewer)
	}
	return survey, voted, nil
}
