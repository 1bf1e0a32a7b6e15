package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/packpipe/model"
)

func TestValidateBundleWithoutDBValid(t *testing.T) {
	b := &model.Bundle{
		Name: "HR",
		Tables: []model.Table{
			{Name: "Employee", Columns: []string{"Name", "L#Status"}},
			{Name: "Contract", Master: "Employee", Columns: []string{"D#StartDate", "A#Salary"}},
		},
	}

	result := ValidateBundleWithoutDB(b)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateBundleEmptyName(t *testing.T) {
	b := &model.Bundle{Tables: []model.Table{{Name: "T", Columns: []string{"Name"}}}}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bundle_name", result.Errors[0].Type)
}

func TestValidateBundleNoTables(t *testing.T) {
	b := &model.Bundle{Name: "Empty"}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "no_tables", result.Errors[0].Type)
}

func TestValidateBundleDuplicateTable(t *testing.T) {
	b := &model.Bundle{
		Name: "Dup",
		Tables: []model.Table{
			{Name: "Employee", Columns: []string{"Name"}},
			{Name: "employee", Columns: []string{"Name"}},
		},
	}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "duplicate_table", result.Errors[0].Type)
}

func TestValidateBundleEmptyColumns(t *testing.T) {
	b := &model.Bundle{Name: "M", Tables: []model.Table{{Name: "Bare"}}}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "no_columns", result.Errors[0].Type)
	assert.Equal(t, "Bare", result.Errors[0].Table)
}

func TestValidateBundleDuplicateColumn(t *testing.T) {
	b := &model.Bundle{
		Name:   "M",
		Tables: []model.Table{{Name: "T", Columns: []string{"Name", "T#Name"}}},
	}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "duplicate_column", result.Errors[0].Type)
}

func TestValidateBundleUnresolvedMasterWarns(t *testing.T) {
	b := &model.Bundle{
		Name:   "M",
		Tables: []model.Table{{Name: "Child", Master: "Missing", Columns: []string{"Name"}}},
	}

	result := ValidateBundleWithoutDB(b)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "master_not_found", result.Warnings[0].Type)
}

func TestValidateBundleSelfMaster(t *testing.T) {
	b := &model.Bundle{
		Name:   "M",
		Tables: []model.Table{{Name: "Loop", Master: "Loop", Columns: []string{"Name"}}},
	}

	result := ValidateBundleWithoutDB(b)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "master_self_reference", result.Errors[0].Type)
}

func TestValidateBundleStandardColumnWarns(t *testing.T) {
	b := &model.Bundle{
		Name:   "M",
		Tables: []model.Table{{Name: "T", Columns: []string{"Created", "Name"}}},
	}

	result := ValidateBundleWithoutDB(b)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "standard_column", result.Warnings[0].Type)
	assert.Equal(t, "Created", result.Warnings[0].Column)
}
