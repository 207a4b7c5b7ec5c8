package bonus_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/performance-bonus/internal/assignment/postgres"
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	bonusPostgres "github.com/frahmantamala/performance-bonus/internal/bonus/postgres"
	allocationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/allocation"
	assignmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/assignment"
	departmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/department"
	evaluationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/evaluation"
	userDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/user"
	"github.com/frahmantamala/performance-bonus/internal/core/events"
	"github.com/frahmantamala/performance-bonus/internal/department"
	departmentPostgres "github.com/frahmantamala/performance-bonus/internal/department/postgres"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/performance-bonus/internal/evaluation/postgres"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	userPostgres "github.com/frahmantamala/performance-bonus/internal/user/postgres"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Bonus Handler Integration", func() {
	var (
		router *chi.Mux
		actor  *user.User
		db     *gorm.DB
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if actor != nil {
			req = req.WithContext(user.ContextWithActor(req.Context(), actor))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) bonus.AllocationResponse {
		var resp bonus.AllocationResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		ctx := context.Background()
		slogger := slog.New(slog.DiscardHandler)

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		// every pooled connection to :memory: would open a fresh database
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&departmentDatamodel.Department{},
			&userDatamodel.User{},
			&assignmentDatamodel.Assignment{},
			&evaluationDatamodel.Evaluation{},
			&allocationDatamodel.Draft{},
		)).To(Succeed())

		users := user.NewService(userPostgres.NewUserRepository(db), slogger)
		departments := department.NewService(departmentPostgres.NewDepartmentRepository(db), users, slogger)
		assignments := assignment.NewService(assignmentPostgres.NewAssignmentRepository(db), users, slogger)
		evaluations := evaluation.NewService(evaluationPostgres.NewEvaluationRepository(db), slogger)
		org := visibility.NewService(departments, users, assignments, nil, slogger)
		bus := events.NewEventBus(slogger)
		service := bonus.NewService(org, evaluations, bonusPostgres.NewDraftStore(db), internal.DefaultAllocationConfig(), bus, bonus.NewMetrics(prometheus.NewRegistry()), slogger)
		handler := bonus.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/allocations/{departmentID}/{year}", handler.GetAllocation)
		router.Put("/allocations/{departmentID}/{year}", handler.SaveAllocation)
		router.Post("/allocations/{departmentID}/{year}/auto", handler.AutoAllocate)
		router.Patch("/allocations/{departmentID}/{year}/members/{userID}", handler.AdjustMember)
		router.Post("/allocations/{departmentID}/{year}/finalize", handler.FinalizeAllocation)

		for _, d := range []*department.Department{
			department.NewDepartment("ops", "biz-1", "Operations", nil, nil),
			department.NewDepartment("hr", "biz-1", "People", nil, nil),
		} {
			Expect(db.Create(department.ToDataModel(d)).Error).To(Succeed())
		}

		ops := "ops"
		people := "hr"
		for _, u := range []*user.User{
			{ID: "lead", BusinessID: "biz-1", Email: "lead@example.com", Name: "Lead", Role: user.RoleHeadManager, DepartmentID: &ops, IsActive: true},
			{ID: "ann", BusinessID: "biz-1", Email: "ann@example.com", Name: "Ann", Role: user.RoleEmployee, DepartmentID: &ops, IsActive: true,
				MonthlySalary: decimal.NewNullDecimal(decimal.NewFromInt(1000))},
			{ID: "bob", BusinessID: "biz-1", Email: "bob@example.com", Name: "Bob", Role: user.RoleEmployee, DepartmentID: &ops, IsActive: true,
				MonthlySalary: decimal.NewNullDecimal(decimal.NewFromInt(1000))},
			{ID: "hana", BusinessID: "biz-1", Email: "hana@example.com", Name: "Hana", Role: user.RoleHR, DepartmentID: &people, IsActive: true},
		} {
			Expect(db.Create(user.ToDataModel(u)).Error).To(Succeed())
		}

		for _, e := range []*evaluation.Evaluation{
			rated("ev-1", "ann", 10, evaluation.TenPoint),
			rated("ev-2", "bob", 2.5, evaluation.FivePoint),
		} {
			e.BusinessID = "biz-1"
			Expect(evaluations.Record(ctx, e)).To(Succeed())
		}

		actor, err = users.GetByID(ctx, "lead")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should auto-allocate the department budget", func() {
		w := do(http.MethodPost, "/allocations/ops/2025/auto", map[string]string{"total_budget": "1200"})
		Expect(w.Code).To(Equal(http.StatusOK))

		resp := decode(w)
		Expect(*resp.Computed).To(BeTrue())
		Expect(resp.Exceeded).To(BeFalse())
		Expect(resp.Members).To(HaveLen(2))
		Expect(resp.Members[0].UserID).To(Equal("ann"))
		Expect(resp.Members[0].BonusPercentage.StringFixed(1)).To(Equal("80.0"))
		Expect(resp.Members[1].BonusPercentage.StringFixed(1)).To(Equal("40.0"))
		Expect(resp.Members[0].BonusAmount.StringFixed(2)).To(Equal("800.00"))
	})

	It("should explain an auto-allocation that computed nothing", func() {
		w := do(http.MethodPost, "/allocations/ops/2025/auto", map[string]string{"total_budget": "0"})
		Expect(w.Code).To(Equal(http.StatusOK))

		resp := decode(w)
		Expect(*resp.Computed).To(BeFalse())
		Expect(resp.Message).To(Equal(bonus.NoOpMissingBudget.Message()))
	})

	It("should save, reload and finalize a draft", func() {
		save := map[string]interface{}{
			"total_budget": "1200",
			"allocations": map[string]interface{}{
				"ann": map[string]string{"bonus_percentage": "80"},
				"bob": map[string]string{"bonus_percentage": "40"},
			},
		}
		w := do(http.MethodPut, "/allocations/ops/2025", save)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Version).To(Equal(int64(1)))

		w = do(http.MethodGet, "/allocations/ops/2025", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp.TotalBudget.Equal(decimal.NewFromInt(1200))).To(BeTrue())
		Expect(resp.Allocated.Equal(decimal.NewFromInt(1200))).To(BeTrue())
		Expect(resp.LastSaved).NotTo(BeNil())

		w = do(http.MethodPost, "/allocations/ops/2025/finalize", map[string]int64{"version": 1})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Status).To(Equal("final"))
	})

	It("should answer 409 for a stale save", func() {
		body := map[string]interface{}{"total_budget": "100", "allocations": map[string]interface{}{}, "version": 7}
		w := do(http.MethodPut, "/allocations/ops/2025", body)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeAllocationStale)))
	})

	It("should answer 403 when allocating to someone outside the team", func() {
		body := map[string]interface{}{
			"total_budget": "100",
			"allocations":  map[string]interface{}{"hana": map[string]string{"bonus_percentage": "5"}},
		}
		w := do(http.MethodPut, "/allocations/ops/2025", body)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 403 when an allocator has nobody in the department", func() {
		people := "hr"
		sue := &user.User{ID: "sue", BusinessID: "biz-1", Email: "sue@example.com", Name: "Sue", Role: user.RoleSupervisor, DepartmentID: &people, IsActive: true}
		Expect(db.Create(user.ToDataModel(sue)).Error).To(Succeed())

		body := map[string]interface{}{
			"total_budget": "1200",
			"allocations":  map[string]interface{}{"ann": map[string]string{"bonus_percentage": "80"}},
		}
		Expect(do(http.MethodPut, "/allocations/ops/2025", body).Code).To(Equal(http.StatusOK))

		actor = sue
		w := do(http.MethodPut, "/allocations/ops/2025", map[string]interface{}{"total_budget": "1", "allocations": map[string]interface{}{}})
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeMemberNotInTeam)))

		w = do(http.MethodPost, "/allocations/ops/2025/finalize", map[string]int64{"version": 1})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should list assignment targets that match no user", func() {
		Expect(db.Create(&assignmentDatamodel.Assignment{
			ID:             "as-ghost",
			BusinessID:     "biz-1",
			Kind:           string(assignment.KindBonus),
			SourceID:       "lead",
			TargetID:       "ghost",
			AssignmentType: string(assignment.TypePermanent),
		}).Error).To(Succeed())

		w := do(http.MethodGet, "/allocations/ops/2025", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp.DanglingTargets).To(Equal([]string{"ghost"}))
		Expect(resp.Members).To(HaveLen(2))
	})

	It("should adjust one member", func() {
		body := map[string]interface{}{
			"delta":       "-50",
			"allocations": map[string]interface{}{"bob": map[string]string{"bonus_percentage": "40"}},
		}
		w := do(http.MethodPatch, "/allocations/ops/2025/members/bob", body)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Members[1].BonusPercentage.IsZero()).To(BeTrue())
	})

	It("should reject a malformed year", func() {
		w := do(http.MethodGet, "/allocations/ops/twenty", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for an unknown department", func() {
		w := do(http.MethodGet, "/allocations/nowhere/2025", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should require an actor", func() {
		actor = nil
		w := do(http.MethodGet, "/allocations/ops/2025", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
