package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/loader"
	"github.com/ridoystarlord/packpipe/utils"
	"github.com/ridoystarlord/packpipe/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <bundle.yaml>",
	Short: "Validate a bundle file before staging",
	Long: `Validate a model bundle against naming rules and the target dictionary.

This command performs comprehensive validation including:
- Table naming (identifier rules, length limits)
- Column tokens (known tags, duplicate detection)
- Master references (must name another table in the bundle)
- Collisions with generated standard columns
- Existing tables in the target dictionary (when connected)

The validator works in two modes:
- Offline: Validates bundle structure and relationships (no database required)
- Online: Also checks against the target dictionary (requires DATABASE_URL)

Examples:
  packpipe validate bundle.yaml                   # Validate a bundle (offline)
  packpipe validate bundle.yaml --format json     # Output validation results as JSON
  DATABASE_URL=postgres://... packpipe validate bundle.yaml  # Online validation
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateBundleFile(args[0]); err != nil {
			fmt.Printf("❌ Bundle validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateBundleFile(path string) error {
	bundle, err := loader.LoadBundleFromYAML(path)
	if err != nil {
		return fmt.Errorf("failed to load bundle: %v", err)
	}

	utils.LoadEnv()
	if os.Getenv("DATABASE_URL") == "" {
		fmt.Println("[DEBUG] DATABASE_URL not set, using offline bundle validation.")
		return outputValidation(validator.ValidateBundleWithoutDB(bundle))
	}

	v, err := validator.NewBundleValidator()
	if err != nil {
		return fmt.Errorf("failed to create bundle validator: %v", err)
	}

	result, err := v.ValidateBundle(bundle)
	if err != nil {
		return fmt.Errorf("failed to validate bundle: %v", err)
	}
	return outputValidation(result)
}

func outputValidation(result *validator.ValidationResult) error {
	if validateFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if result.Valid {
		color.Green("✅ Bundle validation passed!")
	} else {
		color.Red("❌ Bundle validation failed!")
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n🔴 Errors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			printIssue(i, e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n🟡 Warnings (%d):\n", len(result.Warnings))
		for i, w := range result.Warnings {
			printIssue(i, w)
		}
	}

	if len(result.Info) > 0 {
		fmt.Printf("\n🔵 Info (%d):\n", len(result.Info))
		for i, info := range result.Info {
			printIssue(i, info)
		}
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
	fmt.Printf("  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Printf("\n🎉 Your bundle is ready for staging!\n")
	} else {
		fmt.Printf("\n💡 Fix the errors above before staging the bundle.\n")
	}

	return nil
}

func printIssue(i int, e validator.ValidationError) {
	fmt.Printf("  %d. ", i+1)
	if e.Table != "" {
		fmt.Printf("[%s]", e.Table)
	}
	if e.Column != "" {
		fmt.Printf(".%s", e.Column)
	}
	fmt.Printf(": %s\n", e.Message)
}
