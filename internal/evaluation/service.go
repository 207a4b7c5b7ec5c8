package evaluation

import (
	"context"
	"log/slog"

	evaluationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/evaluation"
)

type RepositoryAPI interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*evaluationDatamodel.Evaluation, error)
	Create(ctx context.Context, e *evaluationDatamodel.Evaluation) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*Evaluation, error) {
	rows, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err, "business_id", businessID)
		return nil, err
	}

	out := make([]*Evaluation, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Record(ctx context.Context, e *Evaluation) error {
	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		s.logger.Error("failed to record evaluation", "error", err, "user_id", e.UserID)
		return err
	}
	return nil
}
