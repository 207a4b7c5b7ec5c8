package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/frahmantamala/performance-bonus/internal/bonus"
	departmentPostgres "github.com/frahmantamala/performance-bonus/internal/department/postgres"
	"github.com/frahmantamala/performance-bonus/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	allocateDepartment string
	allocateYear       int
	allocateBudget     string
	allocateActor      string
	allocateSave       bool
	allocateVerbose    bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Auto-allocate a department bonus budget",
	Long: `Compute performance-weighted bonus percentages for the actor's team in a
department and print them. With --save the result replaces the stored draft.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAllocate(cmd.Context(), os.Stdout); err != nil {
			log.Fatalf("allocate failed: %v", err)
		}
	},
}

func init() {
	allocateCmd.Flags().StringVar(&allocateDepartment, "department", "", "department id")
	allocateCmd.Flags().IntVar(&allocateYear, "year", 0, "allocation year")
	allocateCmd.Flags().StringVar(&allocateBudget, "budget", "", "total bonus budget")
	allocateCmd.Flags().StringVar(&allocateActor, "actor", "", "user id allocating the budget, defaults to the department manager")
	allocateCmd.Flags().BoolVar(&allocateSave, "save", false, "save the computed allocation as the department draft")
	allocateCmd.Flags().BoolVar(&allocateVerbose, "verbose", false, "log service activity to stderr")
	_ = allocateCmd.MarkFlagRequired("department")
	_ = allocateCmd.MarkFlagRequired("year")
	_ = allocateCmd.MarkFlagRequired("budget")
}

func runAllocate(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	budget, err := decimal.NewFromString(allocateBudget)
	if err != nil {
		return fmt.Errorf("invalid budget %q: %w", allocateBudget, err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, gdb, rdb, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if rdb != nil {
		defer rdb.Close()
	}

	lg := logger.Discard()
	if allocateVerbose {
		lg = logger.L()
	}

	services, err := buildServices(cfg, gdb, cmdable(rdb), prometheus.NewRegistry(), lg)
	if err != nil {
		return err
	}

	actorID := allocateActor
	if actorID == "" {
		dept, err := departmentPostgres.NewDepartmentRepository(gdb).GetByID(ctx, allocateDepartment)
		if err != nil {
			return err
		}
		if dept == nil || dept.ManagerID == nil {
			return fmt.Errorf("department %s has no manager, pass --actor", allocateDepartment)
		}
		actorID = *dept.ManagerID
	}

	actor, err := services.Users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	a, err := services.Allocations.AutoAllocate(ctx, actor, allocateDepartment, allocateYear, bonus.AutoAllocateDTO{TotalBudget: budget})
	if err != nil {
		return err
	}
	if a.Outcome != nil && !a.Outcome.Computed() {
		fmt.Fprintln(out, a.Outcome.NoOp.Message())
		return nil
	}

	if allocateSave {
		entries := make(map[string]bonus.EntryDTO, len(a.Draft.Allocations))
		for id, e := range a.Draft.Allocations {
			entries[id] = bonus.EntryDTO{BonusPercentage: e.BonusPercentage}
		}
		a, err = services.Allocations.Save(ctx, actor, allocateDepartment, allocateYear, bonus.SaveAllocationDTO{
			TotalBudget: budget,
			Allocations: entries,
			Version:     a.Draft.Version,
		})
		if err != nil {
			return err
		}
	}

	return printAllocation(out, bonus.NewAllocationResponse(a))
}

func printAllocation(out io.Writer, resp bonus.AllocationResponse) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tNAME\tSALARY\tSCORE\tBONUS %\tAMOUNT")
	for _, m := range resp.Members {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.UserID, m.Name, orDash(m.MonthlySalary), m.NormalizedScore.StringFixed(3), orDash(m.BonusPercentage), orDash(m.BonusAmount))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbudget %s  allocated %s  remaining %s  status %s  version %d\n",
		resp.TotalBudget.StringFixed(2), resp.Allocated.StringFixed(2), resp.Remaining.StringFixed(2), resp.Status, resp.Version)
	if resp.Exceeded {
		fmt.Fprintln(out, "warning: allocation exceeds the budget")
	}
	return nil
}

func orDash(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
