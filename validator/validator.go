package validator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/model"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

// BundleValidator validates model bundles before staging
type BundleValidator struct {
	db *sql.DB
}

// NewBundleValidator creates a validator connected to the target database
func NewBundleValidator() (*BundleValidator, error) {
	db, err := database.GetTarget()
	if err != nil {
		return nil, fmt.Errorf("failed to get target connection: %v", err)
	}

	return &BundleValidator{db: db}, nil
}

// ValidateBundle validates a bundle against the target database state
func (v *BundleValidator) ValidateBundle(b *model.Bundle) (*ValidationResult, error) {
	result := newResult()

	existing, err := v.getTargetTables(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get target tables: %v", err)
	}

	validateBundleStructure(b, result)

	for _, t := range b.Tables {
		if existing[strings.ToLower(t.Name)] {
			result.Info = append(result.Info, ValidationError{
				Type:     "table_exists",
				Table:    t.Name,
				Message:  fmt.Sprintf("Table '%s' already exists in the target dictionary", t.Name),
				Severity: "info",
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// ValidateBundleWithoutDB validates a bundle without a target connection
func ValidateBundleWithoutDB(b *model.Bundle) *ValidationResult {
	result := newResult()
	validateBundleStructure(b, result)
	result.Valid = len(result.Errors) == 0
	return result
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}
}

// standardColumns are generated for every table and must not be redefined
var standardColumns = map[string]bool{
	"ad_client_id": true,
	"ad_org_id":    true,
	"isactive":     true,
	"created":      true,
	"createdby":    true,
	"updated":      true,
	"updatedby":    true,
}

func validateBundleStructure(b *model.Bundle, result *ValidationResult) {
	if b.Name == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "bundle_name",
			Message:  "bundle name cannot be empty",
			Severity: "error",
		})
	}

	if len(b.Tables) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "no_tables",
			Message:  "bundle must define at least one table",
			Severity: "error",
		})
		return
	}

	tableNames := make(map[string]bool)
	for _, t := range b.Tables {
		if err := validateTableName(t.Name); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "table_name",
				Table:    t.Name,
				Message:  err.Error(),
				Severity: "error",
			})
		}

		if tableNames[strings.ToLower(t.Name)] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_table",
				Table:    t.Name,
				Message:  fmt.Sprintf("Duplicate table name '%s' in bundle", t.Name),
				Severity: "error",
			})
			continue
		}
		tableNames[strings.ToLower(t.Name)] = true

		validateTableColumns(t, result)
	}

	// Master references resolve within the bundle; unresolved ones
	// downgrade the table to a root at compile time.
	for _, t := range b.Tables {
		if t.Master == "" {
			continue
		}
		if strings.EqualFold(t.Master, t.Name) {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "master_self_reference",
				Table:    t.Name,
				Message:  fmt.Sprintf("Table '%s' cannot be its own master", t.Name),
				Severity: "error",
			})
			continue
		}
		if !tableNames[strings.ToLower(t.Master)] {
			result.Warnings = append(result.Warnings, ValidationError{
				Type:     "master_not_found",
				Table:    t.Name,
				Message:  fmt.Sprintf("Master '%s' of table '%s' is not in this bundle; table will compile as a root", t.Master, t.Name),
				Severity: "warning",
			})
		}
	}
}

func validateTableName(tableName string) error {
	if tableName == "" {
		return fmt.Errorf("table name cannot be empty")
	}

	if len(tableName) > 63 {
		return fmt.Errorf("table name '%s' is too long (max 63 characters)", tableName)
	}

	for _, char := range tableName {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("table name '%s' contains invalid character '%c'", tableName, char)
		}
	}

	return nil
}

func validateTableColumns(t model.Table, result *ValidationResult) {
	if len(t.Columns) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "no_columns",
			Table:    t.Name,
			Message:  fmt.Sprintf("Table '%s' must have at least one column", t.Name),
			Severity: "error",
		})
		return
	}

	columnNames := make(map[string]bool)
	for _, token := range t.Columns {
		spec := model.ParseColumn(token)

		if spec.Name == "" {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "column_name",
				Table:    t.Name,
				Column:   token,
				Message:  fmt.Sprintf("Column token '%s' has no name", token),
				Severity: "error",
			})
			continue
		}

		lower := strings.ToLower(spec.Name)
		if columnNames[lower] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_column",
				Table:    t.Name,
				Column:   spec.Name,
				Message:  fmt.Sprintf("Duplicate column name '%s' in table '%s'", spec.Name, t.Name),
				Severity: "error",
			})
			continue
		}
		columnNames[lower] = true

		if standardColumns[lower] || lower == strings.ToLower(t.Name)+"_id" || lower == strings.ToLower(t.Name)+"_uu" {
			result.Warnings = append(result.Warnings, ValidationError{
				Type:     "standard_column",
				Table:    t.Name,
				Column:   spec.Name,
				Message:  fmt.Sprintf("Column '%s' is generated automatically and should not be listed", spec.Name),
				Severity: "warning",
			})
		}
	}
}

// getTargetTables gets the list of existing dictionary tables from the target
func (v *BundleValidator) getTargetTables(ctx context.Context) (map[string]bool, error) {
	rows, err := v.db.QueryContext(ctx, "SELECT LOWER(tablename) FROM ad_table")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables[tableName] = true
	}

	return tables, rows.Err()
}
