package compiler

// Element is one shared column-name descriptor.
type Element struct {
	ID         int
	ColumnName string
	Name       string
}

// Column is one resolved column on a table.
type Column struct {
	ID          int
	TableID     int
	ColumnName  string
	Name        string
	ReferenceID int
	FieldLength int
	SeqNo       int
	IsMandatory bool
	IsKey       bool
	ElementID   int
}

// Table is one resolved table with its columns in emission order.
type Table struct {
	ID          int
	TableName   string
	Name        string
	Description string
	Help        string
	AccessLevel string
	Columns     []Column
}

// Field is one displayed column on a tab.
type Field struct {
	ID          int
	TabID       int
	ColumnID    int
	Name        string
	SeqNo       int
	IsDisplayed bool
}

// Tab is one tab inside a window. LinkColumnID carries the foreign-key
// column for child tabs; zero means none.
type Tab struct {
	ID           int
	WindowID     int
	TableID      int
	Name         string
	Description  string
	Help         string
	TabLevel     int
	SeqNo        int
	LinkColumnID int
	Fields       []Field
}

// Window is one window with its tabs in display order.
type Window struct {
	ID          int
	Name        string
	Description string
	Help        string
	Tabs        []Tab
}

// Menu is one navigation entry. A summary menu is a folder; a window
// menu carries Action "W" and the window id.
type Menu struct {
	ID        int
	Name      string
	IsSummary bool
	Action    string
	WindowID  int
}

// Graph is the fully resolved output of one compile run.
type Graph struct {
	BundleName  string
	Version     string
	Description string
	Author      string
	Elements    []Element
	Tables      []Table
	Windows     []Window
	Menus       []Menu
	Warnings    []string
}

func (g *Graph) ColumnCount() int {
	n := 0
	for _, t := range g.Tables {
		n += len(t.Columns)
	}
	return n
}

func (g *Graph) TabCount() int {
	n := 0
	for _, w := range g.Windows {
		n += len(w.Tabs)
	}
	return n
}

func (g *Graph) FieldCount() int {
	n := 0
	for _, w := range g.Windows {
		for _, t := range w.Tabs {
			n += len(t.Fields)
		}
	}
	return n
}

// RecordCount is the total number of entity records the graph will emit.
func (g *Graph) RecordCount() int {
	return len(g.Elements) + len(g.Tables) + g.ColumnCount() +
		len(g.Windows) + g.TabCount() + g.FieldCount() + len(g.Menus)
}
