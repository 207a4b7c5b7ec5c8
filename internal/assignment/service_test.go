package assignment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	assignmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/assignment"
	"github.com/frahmantamala/performance-bonus/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements assignment.RepositoryAPI for testing
type MockRepository struct {
	rows       map[string]*assignmentDatamodel.Assignment
	order      []string
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[string]*assignmentDatamodel.Assignment)}
}

func (m *MockRepository) ListByBusiness(_ context.Context, businessID string) ([]*assignmentDatamodel.Assignment, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*assignmentDatamodel.Assignment
	for _, id := range m.order {
		if row, ok := m.rows[id]; ok && row.BusinessID == businessID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(_ context.Context, id string) (*assignmentDatamodel.Assignment, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.rows[id], nil
}

func (m *MockRepository) Create(_ context.Context, a *assignmentDatamodel.Assignment) error {
	if m.shouldFail {
		return m.failError
	}
	m.rows[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id string) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.rows, id)
	return nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type mockUsers map[string]*user.User

func (m mockUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

var _ = Describe("Assignment Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		service  *assignment.Service
	)

	strPtr := func(s string) *string { return &s }

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		users := mockUsers{
			"lead":    {ID: "lead", BusinessID: "biz-1"},
			"dev":     {ID: "dev", BusinessID: "biz-1"},
			"foreign": {ID: "foreign", BusinessID: "biz-2"},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = assignment.NewService(mockRepo, users, logger)
	})

	Describe("Create", func() {
		It("should store a permanent evaluation assignment", func() {
			a, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "evaluation", SourceID: "lead", TargetID: "dev", AssignmentType: "permanent",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ID).NotTo(BeEmpty())
			Expect(mockRepo.rows).To(HaveKey(a.ID))
		})

		It("should reject self assignment", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "bonus", SourceID: "lead", TargetID: "lead", AssignmentType: "permanent",
			})
			Expect(errors.Is(err, internal.ErrAssignmentSelfReference)).To(BeTrue())
			Expect(mockRepo.rows).To(BeEmpty())
		})

		It("should require an expiry date for temporary assignments", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "bonus", SourceID: "lead", TargetID: "dev", AssignmentType: "temporary",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("expires_date"))
		})

		It("should parse the expiry date", func() {
			a, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "bonus", SourceID: "lead", TargetID: "dev", AssignmentType: "temporary", ExpiresDate: strPtr("2025-12-31"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ExpiresDate.Format(assignment.DateLayout)).To(Equal("2025-12-31"))
		})

		It("should reject unknown users as dangling", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "bonus", SourceID: "lead", TargetID: "ghost", AssignmentType: "permanent",
			})
			Expect(errors.Is(err, internal.ErrAssignmentDanglingTarget)).To(BeTrue())

			var dangling *assignment.DanglingTargetError
			Expect(errors.As(err, &dangling)).To(BeTrue())
			Expect(dangling.UserID).To(Equal("ghost"))
		})

		It("should reject users of another business as dangling", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "bonus", SourceID: "lead", TargetID: "foreign", AssignmentType: "permanent",
			})
			Expect(errors.Is(err, internal.ErrAssignmentDanglingTarget)).To(BeTrue())
		})

		It("should reject unknown kinds", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{
				Kind: "mentoring", SourceID: "lead", TargetID: "dev", AssignmentType: "permanent",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("should filter by kind", func() {
			_, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{Kind: "bonus", SourceID: "lead", TargetID: "dev", AssignmentType: "permanent"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{Kind: "evaluation", SourceID: "lead", TargetID: "dev", AssignmentType: "project"})
			Expect(err).NotTo(HaveOccurred())

			bonus, err := service.List(ctx, "biz-1", assignment.KindBonus)
			Expect(err).NotTo(HaveOccurred())
			Expect(bonus).To(HaveLen(1))

			all, err := service.List(ctx, "biz-1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("should propagate repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))

			_, err := service.List(ctx, "biz-1", "")
			Expect(err).To(MatchError("database error"))
		})
	})

	Describe("Delete", func() {
		It("should delete an existing assignment", func() {
			a, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{Kind: "bonus", SourceID: "lead", TargetID: "dev", AssignmentType: "permanent"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, "biz-1", a.ID)).To(Succeed())
			Expect(mockRepo.rows).NotTo(HaveKey(a.ID))
		})

		It("should not delete another business's assignment", func() {
			a, err := service.Create(ctx, "biz-1", assignment.CreateAssignmentDTO{Kind: "bonus", SourceID: "lead", TargetID: "dev", AssignmentType: "permanent"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, "biz-2", a.ID)).To(Equal(internal.ErrAssignmentNotFound))
		})
	})
})
