package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

func NewEngagementService(surveys SurveyRepository) EngagementService {
	return &engagementService{surveys: surveys}
}

type engagementService struct {
	surveys SurveyRepository
}

// AppendUnique は (surveyID, kind, actorEmail) につき寄与を 1 件だけ追記する。
// 既存チェックと書き込みを分離せず、リポジトリの原子的な条件付き更新 1 回に委ねることで
// 同一キーへの並行呼び出しでも勝者がちょうど 1 つになることを保証する。
func (s *engagementService) AppendUnique(ctx context.Context, cmd AppendContributionCommand) (bool, error) {
	if !domain.ValidKind(cmd.Kind) {
		return false, fmt.Errorf("%w: unknown contribution kind %q", domain.ErrInvalidInput, cmd.Kind)
	}

	actor := strings.TrimSpace(cmd.ActorEmail)
	if actor == "" {
		return false, fmt.Errorf("%w: actor email must not be empty", domain.ErrInvalidInput)
	}

	entry := domain.Contribution{ActorEmail: actor}
	switch cmd.Kind {
	case domain.KindVote:
		// choice はアンケートの選択肢リストとは照合しない（存在のみ要求）。
		choice := strings.TrimSpace(cmd.Choice)
		if choice == "" {
			return false, fmt.Errorf("%w: vote requires a choice", domain.ErrInvalidInput)
		}
		entry.Choice = choice
	default:
		entry.Message = strings.TrimSpace(cmd.Message)
	}

	if err := s.surveys.AppendContribution(ctx, cmd.SurveyID, cmd.Kind, entry); err != nil {
		return false, err
	}
	return true, nil
}

// React は行為者を問わない無条件加算。重複排除は行わない仕様。
func (s *engagementService) React(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error) {
	if !domain.ValidReaction(reaction) {
		return domain.SurveyCounters{}, fmt.Errorf("%w: unknown reaction %q", domain.ErrInvalidInput, reaction)
	}
	return s.surveys.IncrementReaction(ctx, surveyID, reaction)
}
