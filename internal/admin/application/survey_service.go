package application

import (
	"context"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type surveyService struct {
	repo SurveyRepository
}

func NewSurveyService(repo SurveyRepository) SurveyService {
	return &surveyService{repo: repo}
}

// List は公開状態を問わず全アンケートを返す。管理ダッシュボード専用の射影。
func (s *surveyService) List(ctx context.Context) ([]domain.Survey, error) {
	return s.repo.FindAll(ctx)
}
