package department_test

import (
	"github.com/frahmantamala/performance-bonus/internal/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hierarchy Traversal", func() {
	var tree *department.Tree

	BeforeEach(func() {
		tree = department.Build([]*department.Department{
			dept("hq", ""),
			dept("ops", "hq"),
			dept("logistics", "ops"),
			dept("fleet", "logistics"),
			dept("finance", "hq"),
			dept("subsidiary", ""),
		})
	})

	Describe("IsDescendant", func() {
		It("should find a direct child", func() {
			Expect(department.IsDescendant(tree, "ops", "hq")).To(BeTrue())
		})

		It("should find a department three levels down", func() {
			Expect(department.IsDescendant(tree, "fleet", "hq")).To(BeTrue())
		})

		It("should not treat a department as its own descendant", func() {
			Expect(department.IsDescendant(tree, "ops", "ops")).To(BeFalse())
		})

		It("should not look upwards", func() {
			Expect(department.IsDescendant(tree, "hq", "fleet")).To(BeFalse())
		})

		It("should reject unrelated branches and unknown ids", func() {
			Expect(department.IsDescendant(tree, "fleet", "finance")).To(BeFalse())
			Expect(department.IsDescendant(tree, "fleet", "subsidiary")).To(BeFalse())
			Expect(department.IsDescendant(tree, "ghost", "hq")).To(BeFalse())
		})
	})

	Describe("IsChild", func() {
		It("should only match one hop", func() {
			Expect(department.IsChild(tree, "logistics", "ops")).To(BeTrue())
			Expect(department.IsChild(tree, "fleet", "ops")).To(BeFalse())
		})
	})

	Describe("Descendants", func() {
		It("should return the whole subtree without the department itself", func() {
			set := department.Descendants(tree, "hq")

			Expect(set).To(HaveLen(4))
			Expect(set.Has("fleet")).To(BeTrue())
			Expect(set.Has("hq")).To(BeFalse())
			Expect(set.Has("subsidiary")).To(BeFalse())
		})

		It("should be empty for leaves and unknown ids", func() {
			Expect(department.Descendants(tree, "fleet")).To(BeEmpty())
			Expect(department.Descendants(tree, "ghost")).To(BeEmpty())
		})
	})

	Describe("Subtree", func() {
		It("should include the department itself", func() {
			set := department.Subtree(tree, "logistics")

			Expect(set).To(HaveLen(2))
			Expect(set.Has("logistics")).To(BeTrue())
			Expect(set.Has("fleet")).To(BeTrue())
		})
	})
})
