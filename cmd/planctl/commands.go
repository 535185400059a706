package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// PlanCmd returns the plan command
func PlanCmd() *cobra.Command {
	var (
		date        string
		orderID     string
		dueSoonDays int
		asJSON      bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "plan <snapshot.yaml>",
		Short: "Build a schedule report from a snapshot file",
		Long: `Build the full schedule report for a snapshot:
- per-order timelines on the shift calendar
- stage utilization and remaining load
- fleet summary

Use --order to print a single order's timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadSnapshot(args[0], strict)
			if err != nil {
				return err
			}
			table, err := file.table()
			if err != nil {
				return err
			}
			snap, err := file.snapshot(date, time.Now())
			if err != nil {
				return err
			}

			report := service.BuildReport(table, snap, dueSoonDays)
			report.GeneratedAt = time.Now().UTC()
			out := cmd.OutOrStdout()

			if orderID != "" {
				order, err := report.FindOrder(orderID)
				if err != nil {
					return fmt.Errorf("%s: %w", orderID, err)
				}
				if asJSON {
					return writeJSON(out, order)
				}
				printTimeline(out, order)
				return nil
			}

			if asJSON {
				return writeJSON(out, report)
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Reference date (YYYY-MM-DD), overrides the snapshot")
	cmd.Flags().StringVarP(&orderID, "order", "o", "", "Only show this order's timeline")
	cmd.Flags().IntVar(&dueSoonDays, "due-soon", service.DefaultDueSoonDays, "Due-soon window in days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject snapshot keys planctl does not know")

	return cmd
}

// ClockCmd returns the clock command
func ClockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clock <minutes>...",
		Short: "Place working-minute offsets on the shift calendar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MINUTES\tDAY\tCLOCK")
			for _, arg := range args {
				minutes, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid minutes %q: %w", arg, err)
				}
				ct := domain.ToClock(minutes)
				fmt.Fprintf(w, "%s\t%d\t%s\n", arg, ct.Day, ct.Clock)
			}
			return w.Flush()
		},
	}
}

// StagesCmd returns the stages command
func StagesCmd() *cobra.Command {
	var (
		snapshotPath string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Show the stage table and its progress ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := domain.NewStageTable(domain.DefaultStages())
			if snapshotPath != "" {
				file, loadErr := loadSnapshot(snapshotPath, strict)
				if loadErr != nil {
					return loadErr
				}
				table, err = file.table()
			}
			if err != nil {
				return err
			}
			printStages(cmd.OutOrStdout(), table.Ranges())
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "Read stages from a snapshot file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject snapshot keys planctl does not know")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStages(out io.Writer, ranges []domain.StageRange) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTAGE\tMACHINE\tRATIO\tRANGE")
	for _, r := range ranges {
		fmt.Fprintf(w, "%d\t%s\t%s\t%g%%\t[%g, %g)\n",
			r.Index+1, r.Stage.Name, r.Stage.MachineLabel(), r.Stage.Ratio, r.Start, r.End)
	}
	w.Flush()
}

func printReport(out io.Writer, report *domain.Report) {
	s := report.Summary
	fmt.Fprintf(out, "Reference date: %s\n", report.ReferenceDate)
	fmt.Fprintf(out, "Orders: %d total, %d active, %d completed, %s\n",
		s.TotalOrders, s.ActiveOrders, s.CompletedOrders,
		color.New(color.FgYellow).Sprintf("%d due soon", s.DueSoon))
	fmt.Fprintf(out, "Units: %d total, %d in progress\n\n", s.TotalUnits, s.WIPUnits)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tCUSTOMER\tDUE\tPRIORITY\tPROGRESS\tCURRENT STAGE")
	for i := range report.Orders {
		o := &report.Orders[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
			o.ID, o.CustomerName, o.CompletionDate, o.Priority, o.Progress, currentStage(o))
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tUTILIZATION\tLOAD\tSHARE")
	for i, u := range report.Utilization {
		load := domain.StageLoad{}
		if i < len(report.Load) {
			load = report.Load[i]
		}
		fmt.Fprintf(w, "%s\t%d%%\t%.1f\t%d%%\n", u.Stage, u.Utilization, load.Load, load.Share)
	}
	w.Flush()
}

func printTimeline(out io.Writer, order *domain.OrderSchedule) {
	fmt.Fprintf(out, "%s  %s  %s → %s  progress %.1f%%\n",
		order.ID, order.CustomerName, order.StartDate, order.CompletionDate, order.Progress)
	fmt.Fprintf(out, "%d working days, %d minutes\n\n", order.Timeline.TotalDays, order.Timeline.TotalMinutes)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tMACHINE\tWORKER\tSTART\tEND\tMINUTES\tSTATUS")
	for _, slot := range order.Timeline.Stages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			slot.Stage, slot.Machine, slot.Worker, slot.Start.Label, slot.End.Label,
			slot.DurationMinutes, statusColor(slot.Status).Sprint(slot.Status))
	}
	w.Flush()
}

// currentStage is the first stage the order has not finished
func currentStage(o *domain.OrderSchedule) string {
	for _, slot := range o.Timeline.Stages {
		if slot.Status != domain.StageStatusCompleted {
			return statusColor(slot.Status).Sprintf("%s (%s)", slot.Stage, slot.Status)
		}
	}
	return color.New(color.FgGreen).Sprint("done")
}

func statusColor(status domain.StageStatus) *color.Color {
	switch status {
	case domain.StageStatusCompleted:
		return color.New(color.FgGreen)
	case domain.StageStatusOngoing:
		return color.New(color.FgCyan)
	case domain.StageStatusPending:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
