package bonus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/core/common/validation"
	"github.com/frahmantamala/performance-bonus/internal/core/events"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type OrganisationAPI interface {
	Snapshot(ctx context.Context, businessID string) (*visibility.Snapshot, error)
	Resolve(snap *visibility.Snapshot, actor *user.User, mode visibility.Mode) *visibility.Team
}

type EvaluationSource interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*evaluation.Evaluation, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Allocation is a draft together with the roster it is shown against.
type Allocation struct {
	Draft  *Draft
	Roster *Roster
	Totals Totals
	// Outcome is set only by AutoAllocate.
	Outcome *Outcome
}

type Service struct {
	org            OrganisationAPI
	evaluations    EvaluationSource
	store          Store
	engine         *Engine
	unscoredWeight decimal.Decimal
	publisher      Publisher
	metrics        *Metrics
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(org OrganisationAPI, evaluations EvaluationSource, store Store, cfg internal.AllocationConfig, publisher Publisher, metrics *Metrics, logger *slog.Logger) *Service {
	if cfg.UnscoredWeight <= 0 {
		cfg.UnscoredWeight = internal.DefaultAllocationConfig().UnscoredWeight
	}
	return &Service{
		org:            org,
		evaluations:    evaluations,
		store:          store,
		engine:         NewEngine(cfg.RoundingPlaces),
		unscoredWeight: decimal.NewFromFloat(cfg.UnscoredWeight),
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// Roster loads the organisation, evaluations and stored draft concurrently
// and scores the actor's team for the department. The draft is nil when none
// was saved yet.
func (s *Service) Roster(ctx context.Context, actor *user.User, departmentID string, year int) (*Roster, *Draft, error) {
	if appErr := validation.ValidateYear(year); appErr != nil {
		return nil, nil, appErr
	}
	start := s.now()

	var (
		snap  *visibility.Snapshot
		evals []*evaluation.Evaluation
		draft *Draft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.org.Snapshot(gctx, actor.BusinessID)
		return err
	})
	g.Go(func() error {
		var err error
		evals, err = s.evaluations.ListByBusiness(gctx, actor.BusinessID)
		return err
	})
	g.Go(func() error {
		var err error
		draft, err = s.store.Get(gctx, actor.BusinessID, departmentID, year)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load allocation sources", "error", err, "department_id", departmentID, "year", year)
		return nil, nil, err
	}

	if !snap.Tree.Contains(departmentID) {
		return nil, nil, internal.ErrDepartmentNotFound
	}

	team := s.org.Resolve(snap, actor, visibility.ModeBonus)
	assigned := snap.Registry.TargetIDs(assignment.KindBonus, actor.ID)
	roster := BuildRoster(team, snap.Tree, departmentID, year, assigned, evals, draft, s.unscoredWeight)

	s.metrics.ObserveRoster(s.now().Sub(start))
	return roster, draft, nil
}

// Load returns the stored draft, or a new empty one, with its totals.
func (s *Service) Load(ctx context.Context, actor *user.User, departmentID string, year int) (*Allocation, error) {
	roster, draft, err := s.Roster(ctx, actor, departmentID, year)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = NewDraft(actor.BusinessID, departmentID, year)
	}
	return s.view(roster, draft), nil
}

// AutoAllocate computes percentages on top of the stored draft without
// saving. A no-op outcome leaves every percentage as it was.
func (s *Service) AutoAllocate(ctx context.Context, actor *user.User, departmentID string, year int, dto AutoAllocateDTO) (*Allocation, error) {
	a, err := s.Load(ctx, actor, departmentID, year)
	if err != nil {
		return nil, err
	}

	outcome := s.engine.AutoAllocate(a.Roster.EngineMembers(), dto.TotalBudget)
	s.metrics.IncrementAutoAllocation(outcome)

	if outcome.Computed() {
		a.Draft.TotalBudget = dto.TotalBudget
		a.Draft.Apply(outcome.Percentages, a.Roster.Salaries())
	} else {
		s.logger.Info("auto-allocation not computed", "reason", outcome.NoOp, "department_id", departmentID, "year", year)
		if dto.TotalBudget.IsPositive() {
			a.Draft.TotalBudget = dto.TotalBudget
		}
	}

	a = s.view(a.Roster, a.Draft)
	a.Outcome = &outcome
	return a, nil
}

// Adjust nudges one member's percentage of a working allocation.
func (s *Service) Adjust(ctx context.Context, actor *user.User, departmentID string, year int, userID string, dto AdjustDTO) (*Allocation, error) {
	a, err := s.Load(ctx, actor, departmentID, year)
	if err != nil {
		return nil, err
	}
	if !a.Roster.Contains(userID) {
		return nil, internal.ErrMemberNotInTeam
	}

	draft := a.Draft.Clone()
	if dto.TotalBudget != nil {
		draft.TotalBudget = *dto.TotalBudget
	}
	if dto.Allocations != nil {
		draft.Allocations = toEntries(dto.Allocations, a.Roster.Salaries())
	}

	adjusted := AdjustPercentage(draft.Percentages(), userID, dto.Delta)
	draft.Apply(map[string]decimal.Decimal{userID: adjusted[userID]}, a.Roster.Salaries())

	return s.view(a.Roster, draft), nil
}

// Save replaces the actor's part of the stored draft with the submitted
// allocation. Every allocated user must be on the actor's roster, and an
// actor with nobody on it may not write at all. Entries of users outside the
// roster and the stored status are kept. Exceeding the budget is reported,
// never refused.
func (s *Service) Save(ctx context.Context, actor *user.User, departmentID string, year int, dto SaveAllocationDTO) (*Allocation, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	if appErr := validation.ValidateBudget(dto.TotalBudget); appErr != nil {
		return nil, appErr
	}

	roster, stored, err := s.Roster(ctx, actor, departmentID, year)
	if err != nil {
		return nil, err
	}
	if err := s.requireTeam(actor, roster); err != nil {
		return nil, err
	}

	for id, e := range dto.Allocations {
		if !roster.Contains(id) {
			s.logger.Warn("refusing allocation for user outside the team", "actor_id", actor.ID, "user_id", id)
			return nil, internal.ErrMemberNotInTeam
		}
		if e.BonusPercentage.IsNegative() {
			return nil, internal.NewValidationFieldError("allocations."+id+".bonus_percentage", "bonus_percentage must not be negative", internal.ErrCodeValidationFailed)
		}
	}

	draft := NewDraft(actor.BusinessID, departmentID, year)
	draft.TotalBudget = dto.TotalBudget
	draft.Allocations = toEntries(dto.Allocations, roster.Salaries())
	draft.Version = dto.Version
	if stored != nil {
		draft.Status = stored.Status
		for id, e := range stored.Allocations {
			if !roster.Contains(id) {
				draft.Allocations[id] = e
			}
		}
	}

	return s.persist(ctx, actor, roster, draft)
}

// Finalize marks the stored draft final. It is saved like any other write,
// so a stale version is refused.
func (s *Service) Finalize(ctx context.Context, actor *user.User, departmentID string, year int, dto FinalizeDTO) (*Allocation, error) {
	roster, draft, err := s.Roster(ctx, actor, departmentID, year)
	if err != nil {
		return nil, err
	}
	if err := s.requireTeam(actor, roster); err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, internal.ErrAllocationNotFound
	}

	draft.Status = StatusFinal
	draft.Version = dto.Version
	return s.persist(ctx, actor, roster, draft)
}

func (s *Service) requireTeam(actor *user.User, roster *Roster) error {
	if len(roster.Members) > 0 {
		return nil
	}
	s.logger.Warn("refusing allocation write without a team in the department",
		"actor_id", actor.ID, "department_id", roster.DepartmentID, "year", roster.Year)
	return internal.ErrMemberNotInTeam
}

func (s *Service) persist(ctx context.Context, actor *user.User, roster *Roster, draft *Draft) (*Allocation, error) {
	draft.LastSaved = s.now().UTC()

	if err := s.store.Put(ctx, draft); err != nil {
		if errors.Is(err, ErrStaleDraft) {
			s.metrics.IncrementStale()
			s.logger.Warn("stale allocation save", "department_id", draft.DepartmentID, "year", draft.Year, "version", draft.Version)
			return nil, internal.ErrAllocationStale.WithCause(err)
		}
		s.logger.Error("failed to save allocation draft", "error", err, "department_id", draft.DepartmentID, "year", draft.Year)
		return nil, err
	}

	a := s.view(roster, draft)
	s.logger.Info("allocation draft saved",
		"department_id", draft.DepartmentID,
		"year", draft.Year,
		"version", draft.Version,
		"status", draft.Status,
		"exceeded", a.Totals.Exceeded)

	if s.publisher != nil {
		event := events.NewAllocationSavedEvent(
			draft.BusinessID, draft.DepartmentID, draft.Year, draft.Version, string(draft.Status), actor.ID,
			draft.TotalBudget.String(), a.Totals.Allocated.String(), a.Totals.Exceeded, len(draft.Allocations),
		)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish allocation event", "error", err, "event_id", event.EventID())
		}
	}
	return a, nil
}

// view totals the draft over the roster, preferring the salary recorded on
// the draft entry.
func (s *Service) view(roster *Roster, draft *Draft) *Allocation {
	members := roster.EngineMembers()
	for i, m := range members {
		if e, ok := draft.Allocations[m.UserID]; ok && e.MonthlySalary.IsPositive() {
			members[i].MonthlySalary = e.MonthlySalary
		}
	}
	return &Allocation{
		Draft:  draft,
		Roster: roster,
		Totals: ComputeTotals(members, draft.Percentages(), draft.TotalBudget),
	}
}

func toEntries(in map[string]EntryDTO, salaries map[string]decimal.Decimal) map[string]Entry {
	out := make(map[string]Entry, len(in))
	for id, e := range in {
		entry := Entry{BonusPercentage: e.BonusPercentage, MonthlySalary: salaries[id]}
		if e.MonthlySalary != nil && e.MonthlySalary.IsPositive() {
			entry.MonthlySalary = *e.MonthlySalary
		}
		out[id] = entry
	}
	return out
}
