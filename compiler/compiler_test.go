package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/packpipe/model"
)

func employeeBundle() Input {
	return Input{
		BundleName:  "HR Management",
		Version:     "1.0.0",
		Description: "Employee tracking",
		Author:      "hr-team",
		Tables: []TableInput{
			{
				Name:        "XX_Employee",
				Description: "Employees",
				Columns:     model.ParseColumnSet("Name,D#StartDate,A#Salary"),
			},
			{
				Name:        "XX_Contract",
				Master:      "XX_Employee",
				Description: "Employment contracts",
				Columns:     model.ParseColumnSet("Name,D#ValidFrom,D#ValidTo"),
			},
		},
	}
}

func TestCompileEmptyBundle(t *testing.T) {
	_, err := Compile(Input{BundleName: "Empty"}, DefaultBases())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staged tables found")
}

func TestCompileMasterDetail(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	require.Len(t, g.Tables, 2)
	employee := g.Tables[0]
	contract := g.Tables[1]

	assert.Equal(t, "XX_Employee", employee.TableName)
	assert.Equal(t, "4", employee.AccessLevel)
	assert.Equal(t, "3", contract.AccessLevel)

	// key + UUID + 7 audit + 3 custom
	require.Len(t, employee.Columns, 12)
	key := employee.Columns[0]
	assert.Equal(t, "XX_Employee_ID", key.ColumnName)
	assert.True(t, key.IsKey)
	assert.True(t, key.IsMandatory)
	assert.Equal(t, model.RefID, key.ReferenceID)

	uu := employee.Columns[1]
	assert.Equal(t, "XX_Employee_UU", uu.ColumnName)
	assert.Equal(t, "UUID", uu.Name)
	assert.Equal(t, 36, uu.FieldLength)
	assert.False(t, uu.IsKey)

	// detail gains a mandatory link column after the audit block
	require.Len(t, contract.Columns, 13)
	link := contract.Columns[9]
	assert.Equal(t, "XX_Employee_ID", link.ColumnName)
	assert.Equal(t, "XX Employee", link.Name)
	assert.True(t, link.IsMandatory)
	assert.False(t, link.IsKey)
	assert.Equal(t, model.RefTableDir, link.ReferenceID)

	// one window holding a main tab and one child tab
	require.Len(t, g.Windows, 1)
	w := g.Windows[0]
	assert.Equal(t, "XX Employee", w.Name)
	require.Len(t, w.Tabs, 2)

	main := w.Tabs[0]
	assert.Equal(t, 0, main.TabLevel)
	assert.Equal(t, 10, main.SeqNo)
	assert.Equal(t, employee.ID, main.TableID)
	assert.Zero(t, main.LinkColumnID)

	child := w.Tabs[1]
	assert.Equal(t, 1, child.TabLevel)
	assert.Equal(t, 20, child.SeqNo)
	assert.Equal(t, contract.ID, child.TableID)
	assert.Equal(t, link.ID, child.LinkColumnID)
}

func TestCompileFieldVisibility(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	main := g.Windows[0].Tabs[0]
	byName := make(map[string]Field)
	for _, f := range main.Fields {
		byName[f.Name] = f
	}

	// audit timestamps never become fields
	assert.NotContains(t, byName, "Created")
	assert.NotContains(t, byName, "Created By")
	assert.NotContains(t, byName, "Updated")
	assert.NotContains(t, byName, "Updated By")

	// 12 columns minus the 4 audit timestamps
	assert.Len(t, main.Fields, 8)

	assert.True(t, byName["XX Employee ID"].IsDisplayed, "own key stays visible")
	assert.True(t, byName["UUID"].IsDisplayed)
	assert.False(t, byName["Client"].IsDisplayed)
	assert.False(t, byName["Organization"].IsDisplayed)
	assert.True(t, byName["Active"].IsDisplayed)
	assert.True(t, byName["Name"].IsDisplayed)

	// the link to the master is hidden on the child tab
	child := g.Windows[0].Tabs[1]
	hiddenLink := false
	for _, f := range child.Fields {
		if f.Name == "XX Employee" {
			hiddenLink = true
			assert.False(t, f.IsDisplayed)
		}
	}
	assert.True(t, hiddenLink, "link field generated on the child tab")

	// field sequence steps by 10 in column order
	for i, f := range main.Fields {
		assert.Equal(t, (i+1)*10, f.SeqNo)
	}
}

func TestCompileMenus(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	require.Len(t, g.Menus, 2)
	folder := g.Menus[0]
	assert.Equal(t, "HR Management", folder.Name)
	assert.True(t, folder.IsSummary)
	assert.Empty(t, folder.Action)

	entry := g.Menus[1]
	assert.Equal(t, "XX Employee", entry.Name)
	assert.Equal(t, "W", entry.Action)
	assert.Equal(t, g.Windows[0].ID, entry.WindowID)
	assert.False(t, entry.IsSummary)
}

func TestCompileElementsShared(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, e := range g.Elements {
		seen[e.ColumnName]++
	}
	for col, n := range seen {
		assert.Equal(t, 1, n, "element %s duplicated", col)
	}
	// both tables share audit elements and the Name element
	assert.Contains(t, seen, "AD_Client_ID")
	assert.Contains(t, seen, "Name")
	assert.Contains(t, seen, "XX_Contract_UU")
	assert.Equal(t, "XX Employee ID", g.Elements[0].Name)
}

func TestCompileIDRanges(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	bases := DefaultBases()
	assert.Equal(t, bases.Table, g.Tables[0].ID)
	assert.Equal(t, bases.Table+1, g.Tables[1].ID)
	assert.Equal(t, bases.Column, g.Tables[0].Columns[0].ID)
	assert.Equal(t, bases.Window, g.Windows[0].ID)
	assert.Equal(t, bases.Tab, g.Windows[0].Tabs[0].ID)
	assert.Equal(t, bases.Menu, g.Menus[0].ID)
	assert.Equal(t, bases.Element, g.Elements[0].ID)

	// each tab draws its field ids from its own block of 100
	assert.Equal(t, bases.Field, g.Windows[0].Tabs[0].Fields[0].ID)
	assert.Equal(t, bases.Field+100, g.Windows[0].Tabs[1].Fields[0].ID)
}

func TestCompileIdempotent(t *testing.T) {
	first, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)
	second, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompileUnresolvedMaster(t *testing.T) {
	in := Input{
		BundleName: "Orphans",
		Tables: []TableInput{
			{Name: "XX_Line", Master: "XX_Header", Columns: model.ParseColumnSet("Name")},
		},
	}
	g, err := Compile(in, DefaultBases())
	require.NoError(t, err)

	require.Len(t, g.Warnings, 1)
	assert.Contains(t, g.Warnings[0], "XX_Header")

	// downgraded to a root table with its own window, no link column
	assert.Equal(t, "4", g.Tables[0].AccessLevel)
	require.Len(t, g.Windows, 1)
	assert.Zero(t, g.Windows[0].Tabs[0].LinkColumnID)
	for _, c := range g.Tables[0].Columns {
		assert.NotEqual(t, "XX_Header_ID", c.ColumnName)
	}
}

func TestCompileCounts(t *testing.T) {
	g, err := Compile(employeeBundle(), DefaultBases())
	require.NoError(t, err)

	assert.Equal(t, 25, g.ColumnCount())
	assert.Equal(t, 2, g.TabCount())
	assert.Equal(t, 17, g.FieldCount())
	total := len(g.Elements) + len(g.Tables) + g.ColumnCount() +
		len(g.Windows) + g.TabCount() + g.FieldCount() + len(g.Menus)
	assert.Equal(t, total, g.RecordCount())
}