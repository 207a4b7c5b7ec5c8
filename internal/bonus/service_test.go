package bonus_test

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	"github.com/frahmantamala/performance-bonus/internal/core/events"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type departmentList []*department.Department

func (l departmentList) ListByBusiness(context.Context, string) ([]*department.Department, error) {
	return l, nil
}

type userList []*user.User

func (l userList) ListByBusiness(context.Context, string) ([]*user.User, error) {
	return l, nil
}

type assignmentList []*assignment.Assignment

func (l assignmentList) Registry(context.Context, string) (*assignment.Registry, error) {
	return assignment.NewRegistry(l, nil), nil
}

type evaluationList []*evaluation.Evaluation

func (l evaluationList) ListByBusiness(context.Context, string) ([]*evaluation.Evaluation, error) {
	return l, nil
}

// memoryStore implements bonus.Store with the same version rules as the
// real stores.
type memoryStore struct {
	drafts     map[string]*bonus.Draft
	shouldFail bool
	failError  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{drafts: make(map[string]*bonus.Draft)}
}

func (m *memoryStore) Get(_ context.Context, businessID, departmentID string, year int) (*bonus.Draft, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	if d, ok := m.drafts[businessID+"/"+bonus.Key(departmentID, year)]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

func (m *memoryStore) Put(_ context.Context, d *bonus.Draft) error {
	if m.shouldFail {
		return m.failError
	}
	key := d.BusinessID + "/" + d.Key()
	stored, ok := m.drafts[key]
	next := int64(1)
	switch {
	case !ok && d.Version != 0:
		return bonus.ErrStaleDraft
	case ok:
		if d.Version != 0 && d.Version != stored.Version {
			return bonus.ErrStaleDraft
		}
		next = stored.Version + 1
	}
	d.Version = next
	m.drafts[key] = d.Clone()
	return nil
}

func (m *memoryStore) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func worker(id, departmentID, salary string) *user.User {
	dept := departmentID
	u := &user.User{ID: id, BusinessID: "biz-1", Name: id, Role: user.RoleEmployee, DepartmentID: &dept, IsActive: true}
	if salary != "" {
		u.MonthlySalary = decimal.NewNullDecimal(d(salary))
	}
	return u
}

func rated(id, userID string, r float64, system evaluation.ScoringSystem) *evaluation.Evaluation {
	done := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	return &evaluation.Evaluation{ID: id, UserID: userID, Status: evaluation.StatusCompleted, OverallRating: &r, ScoringSystem: system, CompletedAt: &done}
}

func ptr(v decimal.Decimal) *decimal.Decimal {
	return &v
}

func percentages(a *bonus.Allocation) map[string]string {
	return fixed(a.Draft.Percentages())
}

var _ = Describe("Bonus Service", func() {
	var (
		ctx       context.Context
		head      *user.User
		sponsor   *user.User
		outsider  *user.User
		store     *memoryStore
		publisher *recordingPublisher
		metrics   *bonus.Metrics
		service   *bonus.Service
	)

	BeforeEach(func() {
		ctx = context.Background()

		eng := "eng"
		head = &user.User{ID: "head", BusinessID: "biz-1", Name: "head", Role: user.RoleHeadManager, DepartmentID: &eng, IsActive: true}
		sponsor = worker("sponsor", "sales", "3000")
		sponsor.Role = user.RoleSupervisor
		outsider = worker("outsider", "sales", "3000")
		outsider.Role = user.RoleSupervisor
		departments := departmentList{
			{ID: "eng", Name: "Engineering", IsActive: true},
			{ID: "platform", Name: "Platform", ParentID: &eng, IsActive: true},
			{ID: "sales", Name: "Sales", IsActive: true},
		}
		users := userList{
			head,
			worker("a", "eng", "1000"),
			worker("b", "platform", "1000"),
			worker("s", "sales", "1000"),
			worker("x", "sales", "2000"),
			sponsor,
			outsider,
		}
		assignments := assignmentList{
			{ID: "as-1", Kind: assignment.KindBonus, SourceID: "head", TargetID: "x", Type: assignment.TypePermanent},
			{ID: "as-2", Kind: assignment.KindBonus, SourceID: "sponsor", TargetID: "b", Type: assignment.TypeProject},
			{ID: "as-3", Kind: assignment.KindBonus, SourceID: "head", TargetID: "ghost", Type: assignment.TypePermanent},
		}
		evals := evaluationList{
			rated("e1", "a", 10, evaluation.TenPoint),
			rated("e2", "b", 2.5, evaluation.FivePoint),
		}

		store = newMemoryStore()
		publisher = &recordingPublisher{}
		metrics = bonus.NewMetrics(prometheus.NewRegistry())
		logger := slog.New(slog.DiscardHandler)
		org := visibility.NewService(departments, users, assignments, nil, logger)
		service = bonus.NewService(org, evals, store, internal.DefaultAllocationConfig(), publisher, metrics, logger)
	})

	Describe("Roster", func() {
		It("should score the department subtree plus explicit bonus assignments", func() {
			roster, draft, err := service.Roster(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft).To(BeNil())

			Expect(roster.Members).To(HaveLen(3))
			Expect(roster.Members[0].UserID).To(Equal("a"))
			Expect(roster.Members[0].Weight.Equal(d("10"))).To(BeTrue())
			Expect(roster.Members[1].Weight.Equal(d("5"))).To(BeTrue())
			Expect(roster.Members[2].UserID).To(Equal("x"))
			Expect(roster.Members[2].Scored).To(BeFalse())
			Expect(roster.Members[2].Weight.Equal(d("1"))).To(BeTrue())
			Expect(roster.Members[2].Via).To(Equal(visibility.SourceAssignment))
			Expect(roster.Contains("s")).To(BeFalse())
		})

		It("should report assignment targets that match no user", func() {
			a, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Roster.Dangling).To(Equal([]string{"ghost"}))
			Expect(a.Roster.Contains("ghost")).To(BeFalse())
			Expect(bonus.NewAllocationResponse(a).DanglingTargets).To(Equal([]string{"ghost"}))

			other, err := service.Load(ctx, sponsor, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(other.Roster.Dangling).To(BeEmpty())
		})

		It("should narrow to a child department", func() {
			roster, _, err := service.Roster(ctx, head, "platform", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(roster.Contains("a")).To(BeFalse())
			Expect(roster.Contains("b")).To(BeTrue())
			Expect(roster.Contains("x")).To(BeTrue())
		})

		It("should reject unknown departments", func() {
			_, _, err := service.Roster(ctx, head, "nowhere", 2025)
			Expect(errors.Is(err, internal.ErrDepartmentNotFound)).To(BeTrue())
		})

		It("should reject years out of range", func() {
			_, _, err := service.Roster(ctx, head, "eng", 1999)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should propagate store failures unchanged", func() {
			boom := errors.New("store down")
			store.SetShouldFail(true, boom)

			_, _, err := service.Roster(ctx, head, "eng", 2025)
			Expect(err).To(MatchError(boom))
		})
	})

	Describe("Load", func() {
		It("should return an empty draft on first visit", func() {
			a, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Draft.Key()).To(Equal("eng_2025"))
			Expect(a.Draft.Allocations).To(BeEmpty())
			Expect(a.Totals.Allocated.IsZero()).To(BeTrue())
		})
	})

	Describe("AutoAllocate", func() {
		It("should allocate by weight without saving", func() {
			a, err := service.AutoAllocate(ctx, head, "eng", 2025, bonus.AutoAllocateDTO{TotalBudget: d("1600")})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Outcome.Computed()).To(BeTrue())
			Expect(percentages(a)).To(Equal(map[string]string{"a": "100.0", "b": "50.0", "x": "5.0"}))
			Expect(a.Totals.Allocated.Equal(d("1600"))).To(BeTrue())
			Expect(a.Totals.Exceeded).To(BeFalse())
			Expect(store.drafts).To(BeEmpty())

			Expect(testutil.ToFloat64(metrics.AutoAllocations.WithLabelValues("computed"))).To(Equal(1.0))
		})

		It("should leave allocations untouched when nothing can be computed", func() {
			_, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("500"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d("7")}},
			})
			Expect(err).NotTo(HaveOccurred())

			a, err := service.AutoAllocate(ctx, head, "eng", 2025, bonus.AutoAllocateDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Outcome.NoOp).To(Equal(bonus.NoOpMissingBudget))
			Expect(percentages(a)).To(Equal(map[string]string{"a": "7.0"}))
		})
	})

	Describe("Adjust", func() {
		It("should floor a lowered percentage at zero", func() {
			a, err := service.Adjust(ctx, head, "eng", 2025, "b", bonus.AdjustDTO{
				Delta:       d("-10"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d("3")}, "b": {BonusPercentage: d("4")}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(percentages(a)).To(Equal(map[string]string{"a": "3.0", "b": "0.0"}))
		})

		It("should refuse members outside the team", func() {
			_, err := service.Adjust(ctx, head, "eng", 2025, "s", bonus.AdjustDTO{Delta: d("1")})
			Expect(err).To(Equal(internal.ErrMemberNotInTeam))
		})
	})

	Describe("Save", func() {
		save := func(version int64, pct string) (*bonus.Allocation, error) {
			return service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1200"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d(pct)}, "b": {BonusPercentage: d("40")}},
				Version:     version,
			})
		}

		It("should round-trip through the store", func() {
			saved, err := save(0, "80")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Draft.Version).To(Equal(int64(1)))
			Expect(saved.Totals.Exceeded).To(BeFalse())

			loaded, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Draft).To(Equal(saved.Draft))
		})

		It("should flag but keep an over-budget draft", func() {
			saved, err := save(0, "200")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Totals.Exceeded).To(BeTrue())
			Expect(store.drafts).To(HaveLen(1))
		})

		It("should publish an allocation.saved event", func() {
			_, err := save(0, "80")
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.events).To(HaveLen(1))
			event, ok := publisher.events[0].(*events.AllocationSavedEvent)
			Expect(ok).To(BeTrue())
			Expect(event.EventType()).To(Equal(events.EventTypeAllocationSaved))
			Expect(event.ActorID).To(Equal("head"))
			Expect(event.Members).To(Equal(2))
		})

		It("should refuse users outside the team", func() {
			_, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1000"),
				Allocations: map[string]bonus.EntryDTO{"s": {BonusPercentage: d("1")}},
			})
			Expect(errors.Is(err, internal.ErrMemberNotInTeam)).To(BeTrue())
			Expect(store.drafts).To(BeEmpty())
		})

		It("should refuse a non-positive budget", func() {
			_, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{TotalBudget: d("0")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("total_budget"))
		})

		It("should let an unversioned save overwrite", func() {
			_, err := save(0, "80")
			Expect(err).NotTo(HaveOccurred())

			again, err := save(0, "70")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Draft.Version).To(Equal(int64(2)))
		})

		It("should reject a save based on an old version", func() {
			_, err := save(0, "80")
			Expect(err).NotTo(HaveOccurred())
			_, err = save(1, "75")
			Expect(err).NotTo(HaveOccurred())

			_, err = save(1, "60")
			Expect(errors.Is(err, internal.ErrAllocationStale)).To(BeTrue())
			Expect(errors.Is(err, bonus.ErrStaleDraft)).To(BeTrue())
			Expect(testutil.ToFloat64(metrics.StaleWrites)).To(Equal(1.0))

			loaded, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Draft.Allocations["a"].BonusPercentage.Equal(d("75"))).To(BeTrue())
		})

		It("should record the salary the percentage applies to", func() {
			saved, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1000"),
				Allocations: map[string]bonus.EntryDTO{
					"a": {BonusPercentage: d("10")},
					"b": {BonusPercentage: d("10"), MonthlySalary: ptr(d("3000"))},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Draft.Allocations["a"].MonthlySalary.Equal(d("1000"))).To(BeTrue())
			Expect(saved.Draft.Allocations["b"].MonthlySalary.Equal(d("3000"))).To(BeTrue())
			Expect(saved.Totals.Allocated.Equal(d("400"))).To(BeTrue())
		})
	})

	Describe("Finalize", func() {
		It("should refuse when nothing was saved", func() {
			_, err := service.Finalize(ctx, head, "eng", 2025, bonus.FinalizeDTO{})
			Expect(err).To(Equal(internal.ErrAllocationNotFound))
		})

		It("should mark the stored draft final", func() {
			_, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1000"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d("10")}},
			})
			Expect(err).NotTo(HaveOccurred())

			final, err := service.Finalize(ctx, head, "eng", 2025, bonus.FinalizeDTO{Version: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(final.Draft.Status).To(Equal(bonus.StatusFinal))
			Expect(final.Draft.Version).To(Equal(int64(2)))
			Expect(publisher.events[len(publisher.events)-1].EventType()).To(Equal(events.EventTypeAllocationFinalized))
		})
	})

	Describe("Write scope", func() {
		BeforeEach(func() {
			_, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1200"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d("50")}, "b": {BonusPercentage: d("40")}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse writes from an actor with nobody in the department", func() {
			roster, _, err := service.Roster(ctx, outsider, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(roster.Members).To(BeEmpty())

			_, err = service.Save(ctx, outsider, "eng", 2025, bonus.SaveAllocationDTO{TotalBudget: d("1")})
			Expect(errors.Is(err, internal.ErrMemberNotInTeam)).To(BeTrue())
			_, err = service.Finalize(ctx, outsider, "eng", 2025, bonus.FinalizeDTO{})
			Expect(errors.Is(err, internal.ErrMemberNotInTeam)).To(BeTrue())

			loaded, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Draft.TotalBudget.Equal(d("1200"))).To(BeTrue())
			Expect(loaded.Draft.Status).To(Equal(bonus.StatusDraft))
			Expect(loaded.Draft.Version).To(Equal(int64(1)))
			Expect(percentages(loaded)).To(Equal(map[string]string{"a": "50.0", "b": "40.0"}))
		})

		It("should keep entries of users outside the saving actor's roster", func() {
			roster, _, err := service.Roster(ctx, sponsor, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(roster.Members).To(HaveLen(1))
			Expect(roster.Contains("b")).To(BeTrue())

			_, err = service.Save(ctx, sponsor, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1200"),
				Allocations: map[string]bonus.EntryDTO{"b": {BonusPercentage: d("20")}},
			})
			Expect(err).NotTo(HaveOccurred())

			loaded, err := service.Load(ctx, head, "eng", 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(percentages(loaded)).To(Equal(map[string]string{"a": "50.0", "b": "20.0"}))
		})

		It("should keep a final status when the allocation is saved again", func() {
			_, err := service.Finalize(ctx, head, "eng", 2025, bonus.FinalizeDTO{Version: 1})
			Expect(err).NotTo(HaveOccurred())

			saved, err := service.Save(ctx, head, "eng", 2025, bonus.SaveAllocationDTO{
				TotalBudget: d("1200"),
				Allocations: map[string]bonus.EntryDTO{"a": {BonusPercentage: d("45")}},
				Version:     2,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Draft.Status).To(Equal(bonus.StatusFinal))
			Expect(saved.Draft.Version).To(Equal(int64(3)))
		})
	})
})
