package bonus_test

import (
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Draft", func() {
	It("should key drafts by department and year", func() {
		Expect(bonus.Key("dept-1", 2025)).To(Equal("dept-1_2025"))
		Expect(bonus.NewDraft("biz", "dept-1", 2025).Key()).To(Equal("dept-1_2025"))
	})

	It("should start empty and in draft status", func() {
		draft := bonus.NewDraft("biz", "dept-1", 2025)
		Expect(draft.Status).To(Equal(bonus.StatusDraft))
		Expect(draft.Allocations).To(BeEmpty())
		Expect(draft.Version).To(BeZero())
	})

	It("should only overwrite the applied members", func() {
		draft := bonus.NewDraft("biz", "dept-1", 2025)
		draft.Allocations["manual"] = bonus.Entry{MonthlySalary: d("900"), BonusPercentage: d("12")}

		draft.Apply(map[string]decimal.Decimal{"a": d("4")}, map[string]decimal.Decimal{"a": d("1000")})

		Expect(draft.Allocations["manual"].BonusPercentage.Equal(d("12"))).To(BeTrue())
		Expect(draft.Allocations["a"].MonthlySalary.Equal(d("1000"))).To(BeTrue())
		Expect(draft.Allocations["a"].BonusPercentage.Equal(d("4"))).To(BeTrue())
	})

	It("should clone allocations deeply", func() {
		draft := bonus.NewDraft("biz", "dept-1", 2025)
		draft.Allocations["a"] = bonus.Entry{BonusPercentage: d("1")}

		cp := draft.Clone()
		cp.Allocations["a"] = bonus.Entry{BonusPercentage: d("9")}

		Expect(draft.Allocations["a"].BonusPercentage.Equal(d("1"))).To(BeTrue())
	})

	It("should map to and from the stored row", func() {
		draft := bonus.NewDraft("biz", "dept-1", 2025)
		draft.TotalBudget = d("1200")
		draft.Version = 3
		draft.Allocations["a"] = bonus.Entry{MonthlySalary: d("1000"), BonusPercentage: d("80")}

		row := bonus.ToDataModel(draft)
		Expect(row.Key).To(Equal("dept-1_2025"))

		back := bonus.FromDataModel(row)
		Expect(back).To(Equal(draft))
	})
})
