package department_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/performance-bonus/internal"
	departmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/department"
	"github.com/frahmantamala/performance-bonus/internal/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements department.RepositoryAPI for testing
type MockRepository struct {
	departments []*departmentDatamodel.Department
	updated     []*departmentDatamodel.Department
	shouldFail  bool
	failError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) ListByBusiness(_ context.Context, businessID string) ([]*departmentDatamodel.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*departmentDatamodel.Department
	for _, d := range m.departments {
		if d.BusinessID == businessID {
			cp := *d
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockRepository) GetByID(_ context.Context, id string) (*departmentDatamodel.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, d := range m.departments {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(_ context.Context, d *departmentDatamodel.Department) error {
	if m.shouldFail {
		return m.failError
	}
	m.departments = append(m.departments, d)
	return nil
}

func (m *MockRepository) Update(_ context.Context, d *departmentDatamodel.Department) error {
	if m.shouldFail {
		return m.failError
	}
	m.updated = append(m.updated, d)
	for i, existing := range m.departments {
		if existing.ID == d.ID {
			m.departments[i] = d
		}
	}
	return nil
}

// Helper methods for testing
func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) AddDepartment(d *department.Department) {
	m.departments = append(m.departments, department.ToDataModel(d))
}

type mockMemberCounter struct {
	counts map[string]int64
}

func (m *mockMemberCounter) CountActiveInDepartment(_ context.Context, departmentID string) (int64, error) {
	return m.counts[departmentID], nil
}

func owned(d *department.Department) *department.Department {
	d.BusinessID = "biz-1"
	return d
}

var _ = Describe("Department Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		members  *mockMemberCounter
		service  *department.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		members = &mockMemberCounter{counts: map[string]int64{}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(mockRepo, members, logger)

		mockRepo.AddDepartment(owned(dept("hq", "")))
		mockRepo.AddDepartment(owned(dept("ops", "hq")))
		mockRepo.AddDepartment(owned(dept("fleet", "ops")))
		mockRepo.AddDepartment(owned(dept("finance", "hq")))
	})

	Describe("Tree", func() {
		It("should only include the caller's business", func() {
			other := dept("elsewhere", "")
			other.BusinessID = "biz-2"
			mockRepo.AddDepartment(other)

			tree, err := service.Tree(ctx, "biz-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Len()).To(Equal(4))
			Expect(tree.Contains("elsewhere")).To(BeFalse())
		})

		It("should propagate repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))

			tree, err := service.Tree(ctx, "biz-1")
			Expect(err).To(MatchError("database error"))
			Expect(tree).To(BeNil())
		})
	})

	Describe("ParentOptions", func() {
		It("should leave out the edited department and its subtree", func() {
			entries, err := service.ParentOptions(ctx, "biz-1", "ops")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(entries)).To(Equal([]string{"hq", "finance"}))
		})
	})

	Describe("Create", func() {
		It("should create an active department under an existing parent", func() {
			parent := "ops"
			d, err := service.Create(ctx, "biz-1", department.CreateDepartmentDTO{Name: "Warehouse", ParentID: &parent})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.ID).NotTo(BeEmpty())
			Expect(d.IsActive).To(BeTrue())
			Expect(d.Parent()).To(Equal("ops"))
		})

		It("should reject a missing name", func() {
			_, err := service.Create(ctx, "biz-1", department.CreateDepartmentDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should reject a parent from another business", func() {
			other := dept("foreign", "")
			other.BusinessID = "biz-2"
			mockRepo.AddDepartment(other)
			parent := "foreign"

			_, err := service.Create(ctx, "biz-1", department.CreateDepartmentDTO{Name: "X", ParentID: &parent})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("Update", func() {
		It("should refuse a reparent that creates a cycle and write nothing", func() {
			parent := "fleet"
			_, err := service.Update(ctx, "biz-1", "hq", department.UpdateDepartmentDTO{ParentID: &parent})

			Expect(errors.Is(err, internal.ErrDepartmentCycle)).To(BeTrue())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentCycle))
			var cycleErr *department.CycleError
			Expect(errors.As(err, &cycleErr)).To(BeTrue())
			Expect(mockRepo.updated).To(BeEmpty())
		})

		It("should move a department to a new parent", func() {
			parent := "finance"
			d, err := service.Update(ctx, "biz-1", "fleet", department.UpdateDepartmentDTO{ParentID: &parent})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Parent()).To(Equal("finance"))
			Expect(mockRepo.updated).To(HaveLen(1))
		})

		It("should move a department to the top level on an empty parent", func() {
			empty := ""
			d, err := service.Update(ctx, "biz-1", "ops", department.UpdateDepartmentDTO{ParentID: &empty})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.ParentID).To(BeNil())
		})

		It("should rename without touching the parent", func() {
			name := "Operations"
			d, err := service.Update(ctx, "biz-1", "ops", department.UpdateDepartmentDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Name).To(Equal("Operations"))
			Expect(d.Parent()).To(Equal("hq"))
		})

		It("should return not found for unknown departments", func() {
			name := "x"
			_, err := service.Update(ctx, "biz-1", "ghost", department.UpdateDepartmentDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("Deactivate", func() {
		It("should refuse while active child departments remain", func() {
			err := service.Deactivate(ctx, "biz-1", "ops")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentHasActiveMembers))
			Expect(mockRepo.updated).To(BeEmpty())
		})

		It("should refuse while active employees remain", func() {
			members.counts["fleet"] = 3

			err := service.Deactivate(ctx, "biz-1", "fleet")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
		})

		It("should deactivate an empty leaf department", func() {
			Expect(service.Deactivate(ctx, "biz-1", "finance")).To(Succeed())
			Expect(mockRepo.updated).To(HaveLen(1))
			Expect(mockRepo.updated[0].IsActive).To(BeFalse())
		})

		It("should ignore inactive children", func() {
			Expect(service.Deactivate(ctx, "biz-1", "fleet")).To(Succeed())
			Expect(service.Deactivate(ctx, "biz-1", "ops")).To(Succeed())
		})

		It("should return not found for unknown departments", func() {
			Expect(service.Deactivate(ctx, "biz-1", "ghost")).To(Equal(internal.ErrDepartmentNotFound))
		})
	})
})
