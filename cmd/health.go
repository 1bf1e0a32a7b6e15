package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check target database connectivity",
	Long: `Check if the target database is accessible and carries an application
dictionary.

Examples:
  packpipe health                    # Check default database connection
  packpipe health --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkTargetHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkTargetHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	target, err := database.GetTarget()
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %v", err)
	}

	if err := target.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	var tableExists bool
	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name = 'ad_table'
	)`

	if err := target.QueryRowContext(ctx, query).Scan(&tableExists); err != nil {
		return fmt.Errorf("failed to check for the application dictionary: %v", err)
	}

	if !tableExists {
		fmt.Println("⚠️  Database is accessible but no application dictionary found")
		return nil
	}

	var count int
	if err := target.QueryRowContext(ctx, "SELECT COUNT(*) FROM ad_table WHERE entitytype = 'U'").Scan(&count); err != nil {
		return fmt.Errorf("failed to count dictionary tables: %v", err)
	}

	fmt.Printf("📊 Found %d customization-owned table(s) in the dictionary\n", count)

	return nil
}
