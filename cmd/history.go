package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/staging"
)

var (
	historyLimit    int
	historyDetailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the operation log",
	Long: `Show every recorded operation with its status, counters, and
timestamps. Each stage, packout, apply, import, patch, and sync run
leaves one entry here.

Examples:
  packpipe history                # Show all operations
  packpipe history --limit 10     # Show the last 10 operations
  packpipe history --detailed     # Include per-record detail logs
`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		limit := historyLimit
		if limit <= 0 {
			limit = -1
		}
		ops, err := store.History(limit)
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}
		if len(ops) == 0 {
			fmt.Println("📋 No operations recorded")
			return
		}

		showOperationHistory(store, ops, historyDetailed)
	},
}

func showOperationHistory(store *staging.Store, ops []staging.Operation, detailed bool) {
	fmt.Println("📋 Operation History")
	fmt.Println(strings.Repeat("=", 70))

	if detailed {
		showDetailedOperations(store, ops)
	} else {
		showSummaryOperations(ops)
	}
}

func statusIcon(status string) string {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	switch status {
	case staging.StatusSuccess:
		return green.Sprint("✅")
	case staging.StatusFailed:
		return red.Sprint("❌")
	case staging.StatusDryRun:
		return blue.Sprint("💡")
	default:
		return yellow.Sprint("⚠️")
	}
}

func showSummaryOperations(ops []staging.Operation) {
	blue := color.New(color.FgBlue, color.Bold)

	fmt.Printf("%-4s %-8s %-12s %-28s %-8s %s\n", "ID", "Status", "Type", "Target", "Errors", "Started")
	fmt.Println(strings.Repeat("-", 80))

	successCount := 0
	failedCount := 0
	for _, op := range ops {
		target := op.FilePath
		if len(target) > 26 {
			target = target[:23] + "..."
		}

		fmt.Printf("%-4d %-8s %-12s %-28s %-8d %s\n",
			op.ID,
			statusIcon(op.Status),
			blue.Sprint(op.Type),
			target,
			op.Errors,
			op.StartedAt,
		)

		if op.Status == staging.StatusSuccess {
			successCount++
		} else if op.Status == staging.StatusFailed {
			failedCount++
		}
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("📊 Summary: %d total, %d successful, %d failed\n", len(ops), successCount, failedCount)
}

func showDetailedOperations(store *staging.Store, ops []staging.Operation) {
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)
	red := color.New(color.FgRed, color.Bold)

	for i, op := range ops {
		fmt.Printf("\n%d. %s ", i+1, statusIcon(op.Status))
		blue.Printf("%s %s\n", op.Type, op.FilePath)

		cyan.Printf("   📅 Started: %s\n", op.StartedAt)
		if op.CompletedAt != "" {
			cyan.Printf("   🏁 Completed: %s\n", op.CompletedAt)
		}
		cyan.Printf("   📊 Tables: %d, Columns: %d, Windows: %d\n", op.Tables, op.Columns, op.Windows)
		if op.Errors > 0 {
			red.Printf("   💥 Errors: %d\n", op.Errors)
		}

		details, err := store.Details(op.ID)
		if err != nil || len(details) == 0 {
			continue
		}
		for _, d := range details {
			line := fmt.Sprintf("   • %s %s %s", d.Action, d.RecordType, d.RecordName)
			if d.Message != "" {
				line += ": " + d.Message
			}
			cyan.Println(line)
		}
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Limit number of operations to show (0 = all)")
	historyCmd.Flags().BoolVarP(&historyDetailed, "detailed", "d", false, "Show per-record detail logs")
}
