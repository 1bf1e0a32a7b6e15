package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/staging"
	"github.com/ridoystarlord/packpipe/utils"
)

var rootCmd = &cobra.Command{
	Use:   "packpipe",
	Short: "Offline metadata packaging and synchronization for application dictionaries",
	Long: `packpipe stages model bundles locally, compiles them into
distributable metadata packages, and keeps them in sync with a target
application database.

Examples:

  packpipe init
  packpipe stage bundle.yaml
  packpipe packout "HR Management"
  packpipe import HR_Management_Model_1_0_0.zip
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// openStore opens the local staging database and ensures its schema.
func openStore() (*staging.Store, error) {
	utils.LoadEnv()
	db, err := database.OpenStaging(utils.GetStagingPath())
	if err != nil {
		return nil, err
	}
	store := staging.New(db)
	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}

// Register subcommands
func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(packoutCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(sql2packCmd)
	rootCmd.AddCommand(packsCmd)
	rootCmd.AddCommand(applyDataCmd)
	rootCmd.AddCommand(appliedCmd)
	rootCmd.AddCommand(cleanDataCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(healthCmd)
}
