package assignment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/core/common/validation"
	assignmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/assignment"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*assignmentDatamodel.Assignment, error)
	GetByID(ctx context.Context, id string) (*assignmentDatamodel.Assignment, error)
	Create(ctx context.Context, a *assignmentDatamodel.Assignment) error
	Delete(ctx context.Context, id string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo   RepositoryAPI
	users  UserLookup
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// ListByBusiness returns every stored assignment, expired ones included.
func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*Assignment, error) {
	rows, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "business_id", businessID)
		return nil, err
	}

	out := make([]*Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// List filters ListByBusiness by kind; an empty kind keeps everything.
func (s *Service) List(ctx context.Context, businessID string, kind Kind) ([]*Assignment, error) {
	all, err := s.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return all, nil
	}

	var out []*Assignment
	for _, a := range all {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Registry(ctx context.Context, businessID string) (*Registry, error) {
	all, err := s.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return NewRegistry(all, s.now), nil
}

func (s *Service) Create(ctx context.Context, businessID string, dto CreateAssignmentDTO) (*Assignment, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	if dto.SourceID == dto.TargetID {
		return nil, internal.ErrAssignmentSelfReference
	}

	a := &Assignment{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Kind:       Kind(dto.Kind),
		SourceID:   dto.SourceID,
		TargetID:   dto.TargetID,
		Type:       Type(dto.AssignmentType),
		CreatedAt:  s.now(),
	}

	if dto.ExpiresDate != nil && *dto.ExpiresDate != "" {
		expires, err := time.Parse(DateLayout, *dto.ExpiresDate)
		if err != nil {
			return nil, internal.NewValidationFieldError("expires_date", "expires_date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		a.ExpiresDate = &expires
	}
	if a.Type == TypeTemporary && a.ExpiresDate == nil {
		return nil, internal.NewValidationFieldError("expires_date", "expires_date is required for temporary assignments", internal.ErrCodeInvalidDate)
	}

	for _, id := range []string{a.SourceID, a.TargetID} {
		if err := s.ensureUser(ctx, businessID, a.ID, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, ToDataModel(a)); err != nil {
		s.logger.Error("failed to create assignment", "error", err, "source_id", a.SourceID, "target_id", a.TargetID)
		return nil, err
	}

	s.logger.Info("assignment created", "assignment_id", a.ID, "kind", a.Kind, "type", a.Type)
	return a, nil
}

func (s *Service) ensureUser(ctx context.Context, businessID, assignmentID, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, internal.ErrUserNotFound) {
		return err
	}
	if u == nil || u.BusinessID != businessID {
		return internal.ErrAssignmentDanglingTarget.WithCause(&DanglingTargetError{AssignmentID: assignmentID, UserID: userID})
	}
	return nil
}

// Delete removes an assignment. Expired assignments are only ever removed
// this way.
func (s *Service) Delete(ctx context.Context, businessID, id string) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get assignment", "error", err, "assignment_id", id)
		return err
	}
	if row == nil || row.BusinessID != businessID {
		return internal.ErrAssignmentNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete assignment", "error", err, "assignment_id", id)
		return err
	}

	s.logger.Info("assignment deleted", "assignment_id", id)
	return nil
}
