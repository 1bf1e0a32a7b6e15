package compiler

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/packpipe/model"
)

// Input is everything one compile run consumes: the bundle identity
// plus its table definitions in staged order. How the rows were read
// (YAML, staging store, spreadsheet) is the caller's business.
type Input struct {
	BundleName  string
	Version     string
	Description string
	Author      string
	Tables      []TableInput
}

// TableInput is one table definition row.
type TableInput struct {
	Name        string
	Master      string
	Description string
	Help        string
	Columns     []model.ColumnSpec
}

type standardColumn struct {
	name        string
	displayName string
	referenceID int
	fieldLength int
	mandatory   bool
}

// auditColumns are generated on every table after the key and UUID
// columns, in this order.
var auditColumns = []standardColumn{
	{"AD_Client_ID", "Client", model.RefTableDir, 22, true},
	{"AD_Org_ID", "Organization", model.RefTableDir, 22, true},
	{"IsActive", "Active", model.RefYesNo, 1, true},
	{"Created", "Created", model.RefDateTime, 29, false},
	{"CreatedBy", "Created By", model.RefTable, 22, false},
	{"Updated", "Updated", model.RefDateTime, 29, false},
	{"UpdatedBy", "Updated By", model.RefTable, 22, false},
}

// Compile resolves a staged bundle into a full metadata graph: one
// element per distinct column name, tables with generated standard
// columns, windows and tabs for root/detail tables, and menu entries.
// Ids are drawn from the allocator ranges; nothing is persisted.
func Compile(in Input, bases Bases) (*Graph, error) {
	if len(in.Tables) == 0 {
		return nil, fmt.Errorf("no staged tables found for bundle: %s", in.BundleName)
	}

	g := &Graph{
		BundleName:  in.BundleName,
		Version:     in.Version,
		Description: in.Description,
		Author:      in.Author,
	}
	alloc := NewAllocator(bases)

	// Unresolved masters downgrade to root tables
	known := make(map[string]bool)
	for _, t := range in.Tables {
		known[t.Name] = true
	}
	tables := make([]TableInput, len(in.Tables))
	copy(tables, in.Tables)
	for i := range tables {
		if tables[i].Master != "" && !known[tables[i].Master] {
			g.Warnings = append(g.Warnings,
				fmt.Sprintf("master '%s' of table '%s' not found in bundle, treating as root", tables[i].Master, tables[i].Name))
			tables[i].Master = ""
		}
	}

	// Pass 1: one element per distinct column name across the bundle
	elementIDs := make(map[string]int)
	for _, t := range tables {
		for _, col := range allColumnNames(t) {
			if _, done := elementIDs[col]; done {
				continue
			}
			id := alloc.NextElement()
			elementIDs[col] = id
			g.Elements = append(g.Elements, Element{
				ID:         id,
				ColumnName: col,
				Name:       model.DisplayName(col),
			})
		}
	}

	// Pass 2: tables with key, UUID, audit, link and custom columns
	tableIDs := make(map[string]int)
	columnIDs := make(map[string]int)
	for _, t := range tables {
		tableID := alloc.NextTable()
		tableIDs[t.Name] = tableID

		accessLevel := "3"
		if t.Master == "" {
			accessLevel = "4"
		}

		table := Table{
			ID:          tableID,
			TableName:   t.Name,
			Name:        model.DisplayName(t.Name),
			Description: t.Description,
			Help:        t.Help,
			AccessLevel: accessLevel,
		}

		seqNo := 10
		addColumn := func(colName, displayName string, refID, fieldLen int, mandatory, key bool) {
			id := alloc.NextColumn()
			columnIDs[t.Name+"."+colName] = id
			table.Columns = append(table.Columns, Column{
				ID:          id,
				TableID:     tableID,
				ColumnName:  colName,
				Name:        displayName,
				ReferenceID: refID,
				FieldLength: fieldLen,
				SeqNo:       seqNo,
				IsMandatory: mandatory,
				IsKey:       key,
				ElementID:   elementIDs[colName],
			})
			seqNo += 10
		}

		keyCol := t.Name + "_ID"
		addColumn(keyCol, model.DisplayName(keyCol), model.RefID, 22, true, true)
		addColumn(t.Name+"_UU", "UUID", model.RefString, 36, false, false)
		for _, std := range auditColumns {
			addColumn(std.name, std.displayName, std.referenceID, std.fieldLength, std.mandatory, false)
		}
		if t.Master != "" {
			addColumn(t.Master+"_ID", model.DisplayName(t.Master), model.RefTableDir, 22, true, false)
		}
		for _, spec := range t.Columns {
			addColumn(spec.Name, model.DisplayName(spec.Name), spec.ReferenceID, spec.FieldLength, false, false)
		}

		g.Tables = append(g.Tables, table)
	}

	// Pass 3: windows for root tables, child tabs for their details
	windowIDs := make(map[string]int)
	for _, t := range tables {
		if t.Master != "" {
			continue
		}

		windowID := alloc.NextWindow()
		windowIDs[t.Name] = windowID
		window := Window{
			ID:          windowID,
			Name:        model.DisplayName(t.Name),
			Description: t.Description,
			Help:        t.Help,
		}

		mainTab := Tab{
			ID:          alloc.NextTab(),
			WindowID:    windowID,
			TableID:     tableIDs[t.Name],
			Name:        model.DisplayName(t.Name),
			Description: t.Description,
			Help:        t.Help,
			TabLevel:    0,
			SeqNo:       10,
		}
		mainTab.Fields = fieldsForTable(alloc, mainTab.ID, t.Name, tableColumns(g, t.Name))
		window.Tabs = append(window.Tabs, mainTab)

		tabSeq := 20
		for _, detail := range tables {
			if detail.Master != t.Name {
				continue
			}
			tab := Tab{
				ID:           alloc.NextTab(),
				WindowID:     windowID,
				TableID:      tableIDs[detail.Name],
				Name:         model.DisplayName(detail.Name),
				Description:  detail.Description,
				Help:         detail.Help,
				TabLevel:     1,
				SeqNo:        tabSeq,
				LinkColumnID: columnIDs[detail.Name+"."+t.Name+"_ID"],
			}
			tab.Fields = fieldsForTable(alloc, tab.ID, detail.Name, tableColumns(g, detail.Name))
			window.Tabs = append(window.Tabs, tab)
			tabSeq += 10
		}

		g.Windows = append(g.Windows, window)
	}

	// Pass 4: one folder menu for the bundle, one entry per window
	g.Menus = append(g.Menus, Menu{
		ID:        alloc.NextMenu(),
		Name:      in.BundleName,
		IsSummary: true,
	})
	for _, t := range tables {
		if t.Master != "" {
			continue
		}
		if windowID, ok := windowIDs[t.Name]; ok {
			g.Menus = append(g.Menus, Menu{
				ID:       alloc.NextMenu(),
				Name:     model.DisplayName(t.Name),
				Action:   "W",
				WindowID: windowID,
			})
		}
	}

	return g, nil
}

// allColumnNames lists a table's column names in emission order: the
// nine implicit standard columns, the master link, then custom columns.
func allColumnNames(t TableInput) []string {
	names := []string{
		t.Name + "_ID", t.Name + "_UU",
		"AD_Client_ID", "AD_Org_ID", "IsActive",
		"Created", "CreatedBy", "Updated", "UpdatedBy",
	}
	if t.Master != "" {
		names = append(names, t.Master+"_ID")
	}
	for _, spec := range t.Columns {
		names = append(names, spec.Name)
	}
	return names
}

func tableColumns(g *Graph, tableName string) []Column {
	for _, t := range g.Tables {
		if t.TableName == tableName {
			return t.Columns
		}
	}
	return nil
}

// fieldsForTable generates the tab's fields from the table's columns in
// column order, skipping the audit timestamps. Reference columns are
// hidden except the table's own key.
func fieldsForTable(alloc *Allocator, tabID int, tableName string, columns []Column) []Field {
	base := alloc.FieldBlock()
	var fields []Field
	seqNo := 10
	for _, col := range columns {
		switch col.ColumnName {
		case "Created", "CreatedBy", "Updated", "UpdatedBy":
			continue
		}
		displayed := !strings.HasSuffix(col.ColumnName, "_ID") || col.ColumnName == tableName+"_ID"
		fields = append(fields, Field{
			ID:          base + len(fields),
			TabID:       tabID,
			ColumnID:    col.ID,
			Name:        col.Name,
			SeqNo:       seqNo,
			IsDisplayed: displayed,
		})
		seqNo += 10
	}
	return fields
}
