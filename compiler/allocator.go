package compiler

// Bases holds the starting id for each entity kind. Generated ids live
// in disjoint ranges so cross-references never collide.
type Bases struct {
	Table   int
	Column  int
	Window  int
	Tab     int
	Field   int
	Menu    int
	Element int
}

// DefaultBases returns the standard id ranges.
func DefaultBases() Bases {
	return Bases{
		Table:   1000000,
		Column:  2000000,
		Window:  3000000,
		Tab:     4000000,
		Field:   5000000,
		Menu:    6000000,
		Element: 7000000,
	}
}

// Allocator hands out monotonically increasing ids per entity kind.
// It is a plain value threaded through one compile run; nothing is
// shared or persisted.
type Allocator struct {
	next Bases
}

func NewAllocator(b Bases) *Allocator {
	return &Allocator{next: b}
}

func (a *Allocator) NextTable() int {
	id := a.next.Table
	a.next.Table++
	return id
}

func (a *Allocator) NextColumn() int {
	id := a.next.Column
	a.next.Column++
	return id
}

func (a *Allocator) NextWindow() int {
	id := a.next.Window
	a.next.Window++
	return id
}

func (a *Allocator) NextTab() int {
	id := a.next.Tab
	a.next.Tab++
	return id
}

func (a *Allocator) NextMenu() int {
	id := a.next.Menu
	a.next.Menu++
	return id
}

func (a *Allocator) NextElement() int {
	id := a.next.Element
	a.next.Element++
	return id
}

// FieldBlock reserves a block of 100 field ids for one tab and returns
// the first id of the block.
func (a *Allocator) FieldBlock() int {
	id := a.next.Field
	a.next.Field += 100
	return id
}
