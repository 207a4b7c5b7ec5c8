package visibility

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"golang.org/x/sync/errgroup"
)

type DepartmentSource interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*department.Department, error)
}

type UserSource interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*user.User, error)
}

type AssignmentSource interface {
	Registry(ctx context.Context, businessID string) (*assignment.Registry, error)
}

// Snapshot is one consistent read of a business's organisation.
type Snapshot struct {
	Departments []*department.Department
	Tree        *department.Tree
	Users       []*user.User
	Registry    *assignment.Registry
}

type Service struct {
	departments DepartmentSource
	users       UserSource
	assignments AssignmentSource
	resolver    *Resolver
	metrics     *Metrics
	logger      *slog.Logger
}

func NewService(departments DepartmentSource, users UserSource, assignments AssignmentSource, metrics *Metrics, logger *slog.Logger) *Service {
	return &Service{
		departments: departments,
		users:       users,
		assignments: assignments,
		resolver:    NewResolver(nil),
		metrics:     metrics,
		logger:      logger,
	}
}

// Snapshot reads departments, users and assignments concurrently. The first
// source error cancels the others and is returned unchanged.
func (s *Service) Snapshot(ctx context.Context, businessID string) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Departments, err = s.departments.ListByBusiness(gctx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Users, err = s.users.ListByBusiness(gctx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Registry, err = s.assignments.Registry(gctx, businessID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load organisation snapshot", "error", err, "business_id", businessID)
		return nil, err
	}

	snap.Tree = department.Build(snap.Departments)
	if len(snap.Tree.Cycles) > 0 {
		s.logger.Warn("department cycles detected, affected departments treated as roots",
			"business_id", businessID, "department_ids", snap.Tree.Cycles)
	}
	return snap, nil
}

// Resolve computes the team of actor over an already loaded snapshot.
func (s *Service) Resolve(snap *Snapshot, actor *user.User, mode Mode) *Team {
	team := s.resolver.ComputeTeam(actor, snap.Users, snap.Tree, snap.Registry, mode)

	if len(team.Dangling) > 0 {
		s.logger.Warn("dangling assignment targets",
			"actor_id", actor.ID, "mode", mode, "user_ids", team.Dangling)
		s.metrics.AddDangling(len(team.Dangling))
	}
	s.metrics.ObserveTeam(string(actor.Role), mode, team.Len())
	return team
}

func (s *Service) Team(ctx context.Context, actor *user.User, mode Mode) (*Team, error) {
	snap, err := s.Snapshot(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	return s.Resolve(snap, actor, mode), nil
}
