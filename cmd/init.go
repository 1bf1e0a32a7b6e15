package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter bundle file",
	Long: `Create a starter bundle.yaml describing a small master-detail model.

A bundle names the tables to create in the target dictionary. Each
table lists its custom columns as tokens; key, UUID and audit columns
are generated automatically.

Examples:
  packpipe init                   # Create bundle.yaml
  packpipe stage bundle.yaml      # Stage it afterwards`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("bundle.yaml"); err == nil {
			fmt.Println("❌ bundle.yaml already exists!")
			return
		}

		content := `# Model bundle definition
name: HR Management
version: 1.0.0
description: Human resource tables
author: packpipe

tables:
  - name: XX_Employee
    description: Employees
    columns:
      - Name
      - D#StartDate
      - A#Salary

  - name: XX_Contract
    master: XX_Employee
    description: Employment contracts
    columns:
      - Name
      - D#ValidFrom
      - D#ValidTo

# Column tokens:
# - Name              plain string column
# - Q#Qty             quantity
# - A#Amount          amount
# - Y#IsBilled        yes-no flag
# - D#DueDate         date
# - d#ReadAt          date and time
# - T#Notes           long text
# - L#Status          list
# - Meter_ID          names ending _ID become table references
#
# 'master' names another table in the same bundle; the compiler links
# the detail to it with a generated foreign key column and a child tab.
`
		if err := os.WriteFile("bundle.yaml", []byte(content), 0644); err != nil {
			fmt.Println("❌ Error creating bundle.yaml:", err)
			return
		}
		fmt.Println("✅ Created bundle.yaml example file.")
		fmt.Println("📝 Edit bundle.yaml to describe your tables")
		fmt.Println("🚀 Run 'packpipe stage bundle.yaml' to stage the bundle")
	},
}
