package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedBusinessID = "demo-business"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed a demo business with a department tree, users, assignments and completed evaluations.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, gdb, rdb, err := connect(context.Background(), cfg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()
		if rdb != nil {
			defer rdb.Close()
		}

		if clearData {
			if err := clearSeed(gdb); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data for", seedBusinessID)
		}

		if err := seed(gdb, time.Now().UTC()); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Println("Seeded business:", seedBusinessID)
	},
}

type seedUser struct {
	id, name, role, department, salary string
}

func seed(db *gorm.DB, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true})

		departments := []struct{ id, name, parent string }{
			{"dept-engineering", "Engineering", ""},
			{"dept-platform", "Platform", "dept-engineering"},
			{"dept-infrastructure", "Infrastructure", "dept-platform"},
			{"dept-product", "Product", "dept-engineering"},
			{"dept-sales", "Sales", ""},
			{"dept-people", "People", ""},
		}
		for _, d := range departments {
			var parent *string
			if d.parent != "" {
				p := d.parent
				parent = &p
			}
			if err := insert.Create(department.ToDataModel(department.NewDepartment(d.id, seedBusinessID, d.name, parent, nil))).Error; err != nil {
				return fmt.Errorf("department %s: %w", d.id, err)
			}
		}

		users := []seedUser{
			{"user-admin", "Ada Admin", "admin", "", ""},
			{"user-hr", "Hana HR", "hr", "dept-people", "5200"},
			{"user-head", "Henry Head", "head-manager", "dept-engineering", "12000"},
			{"user-platform-mgr", "Maya Manager", "manager", "dept-platform", "9000"},
			{"user-platform-sup", "Sam Supervisor", "supervisor", "dept-platform", "7000"},
			{"user-platform-dev", "Dina Developer", "employee", "dept-platform", "6000"},
			{"user-infra-dev", "Ian Infra", "employee", "dept-infrastructure", "6500"},
			{"user-product-dev", "Paula Product", "employee", "dept-product", "5800"},
			{"user-product-intern", "Ivan Intern", "employee", "dept-product", ""},
			{"user-sales-mgr", "Sara Sales", "manager", "dept-sales", "8000"},
			{"user-sales-rep", "Rob Rep", "employee", "dept-sales", "4500"},
		}
		for _, su := range users {
			u := &user.User{
				ID:         su.id,
				BusinessID: seedBusinessID,
				Email:      su.id + "@example.com",
				Name:       su.name,
				Role:       user.Role(su.role),
				IsActive:   true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if su.department != "" {
				d := su.department
				u.DepartmentID = &d
			}
			if su.salary != "" {
				u.MonthlySalary = decimal.NewNullDecimal(decimal.RequireFromString(su.salary))
			}
			if err := insert.Create(user.ToDataModel(u)).Error; err != nil {
				return fmt.Errorf("user %s: %w", su.id, err)
			}
		}

		managers := map[string]string{
			"dept-engineering": "user-head",
			"dept-platform":    "user-platform-mgr",
			"dept-sales":       "user-sales-mgr",
			"dept-people":      "user-hr",
		}
		for deptID, managerID := range managers {
			if err := tx.Table("departments").Where("id = ?", deptID).Update("manager_id", managerID).Error; err != nil {
				return fmt.Errorf("manager of %s: %w", deptID, err)
			}
		}

		expires := now.AddDate(0, 3, 0)
		assignments := []*assignment.Assignment{
			{ID: "asg-sales-bonus", Kind: assignment.KindBonus, SourceID: "user-head", TargetID: "user-sales-rep", Type: assignment.TypeProject},
			{ID: "asg-sales-review", Kind: assignment.KindEvaluation, SourceID: "user-platform-mgr", TargetID: "user-sales-rep", Type: assignment.TypeTemporary, ExpiresDate: &expires},
			{ID: "asg-product-review", Kind: assignment.KindEvaluation, SourceID: "user-platform-sup", TargetID: "user-product-dev", Type: assignment.TypePermanent},
		}
		for _, a := range assignments {
			a.BusinessID = seedBusinessID
			a.CreatedAt = now
			if err := insert.Create(assignment.ToDataModel(a)).Error; err != nil {
				return fmt.Errorf("assignment %s: %w", a.ID, err)
			}
		}

		completed := now.AddDate(0, -1, 0)
		ratings := []struct {
			id, userID string
			rating     float64
			system     evaluation.ScoringSystem
		}{
			{"eval-platform-dev", "user-platform-dev", 4.5, evaluation.FivePoint},
			{"eval-infra-dev", "user-infra-dev", 8, evaluation.TenPoint},
			{"eval-product-dev", "user-product-dev", 3, evaluation.FivePoint},
			{"eval-platform-sup", "user-platform-sup", 7, 0},
			{"eval-sales-rep", "user-sales-rep", 4, evaluation.FivePoint},
		}
		for _, r := range ratings {
			rating := r.rating
			e := &evaluation.Evaluation{
				ID:            r.id,
				BusinessID:    seedBusinessID,
				UserID:        r.userID,
				Status:        evaluation.StatusCompleted,
				OverallRating: &rating,
				ScoringSystem: r.system,
				CompletedAt:   &completed,
				CreatedAt:     completed,
			}
			if err := insert.Create(evaluation.ToDataModel(e)).Error; err != nil {
				return fmt.Errorf("evaluation %s: %w", r.id, err)
			}
		}

		return nil
	})
}

func clearSeed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"allocation_drafts", "evaluations", "assignments"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE business_id = ?", seedBusinessID).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if err := tx.Exec("UPDATE departments SET manager_id = NULL WHERE business_id = ?", seedBusinessID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM users WHERE business_id = ?", seedBusinessID).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE departments SET parent_department_id = NULL WHERE business_id = ?", seedBusinessID).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM departments WHERE business_id = ?", seedBusinessID).Error
	})
}
