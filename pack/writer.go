package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ridoystarlord/packpipe/compiler"
)

// DataRecord is one staged data row bound for a data pack.
type DataRecord struct {
	TableName string
	Values    map[string]string
}

// Writer serializes compiled graphs and staged data records into wire
// package archives under OutputDir.
//
// When Namespace holds a UUID, record UUIDs are derived from it, so
// repeated writes of the same graph address the same target rows.
// Empty means fresh UUIDs on every write.
type Writer struct {
	OutputDir   string
	ClientScope string
	Namespace   string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{
		OutputDir:   outputDir,
		ClientScope: "0-SYSTEM-System",
	}
}

type uuFunc func(kind string, id int) string

func (w *Writer) uuSource() uuFunc {
	if w.Namespace != "" {
		if space, err := uuid.Parse(w.Namespace); err == nil {
			return func(kind string, id int) string {
				return uuid.NewSHA1(space, []byte(fmt.Sprintf("%s/%d", kind, id))).String()
			}
		}
	}
	return func(kind string, id int) string {
		return uuid.New().String()
	}
}

// Manifest serializes a compiled metadata graph as a bare package
// document: elements first, then tables with their columns, windows
// with tabs and fields, menus last.
func (w *Writer) Manifest(g *compiler.Graph) []byte {
	packName := g.BundleName + "_Model"
	uu := w.uuSource()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<idempiere Name=\"%s\" Version=\"%s\" CompVer=\"\" DataBase=\"\" Description=\"%s\" Creator=\"%s\" CreatorContact=\"\" Client=\"%s\">\n",
		escapeXML(packName), escapeXML(g.Version), escapeXML(g.Description), escapeXML(g.Author), escapeXML(w.ClientScope))

	for _, e := range g.Elements {
		writeElement(&b, e, uu)
	}
	for _, t := range g.Tables {
		writeTable(&b, t, uu)
		for _, c := range t.Columns {
			writeColumn(&b, c, uu)
		}
	}
	for _, win := range g.Windows {
		writeWindow(&b, win, uu)
		for _, tab := range win.Tabs {
			writeTab(&b, tab, uu)
			for _, f := range tab.Fields {
				writeField(&b, f, uu)
			}
		}
	}
	for _, m := range g.Menus {
		writeMenu(&b, m, uu)
	}
	b.WriteString("</idempiere>\n")
	return []byte(b.String())
}

// WriteGraph serializes a compiled metadata graph as a model package:
// a <name>_Model/dict/PackOut.xml tree zipped into a single archive.
// The temporary tree is removed once the archive exists.
func (w *Writer) WriteGraph(g *compiler.Graph) (string, error) {
	packName := g.BundleName + "_Model"
	packDir := filepath.Join(w.OutputDir, packName)
	dictDir := filepath.Join(packDir, "dict")
	if err := os.MkdirAll(dictDir, 0755); err != nil {
		return "", fmt.Errorf("creating package tree: %v", err)
	}

	xmlPath := filepath.Join(dictDir, "PackOut.xml")
	if err := os.WriteFile(xmlPath, w.Manifest(g), 0644); err != nil {
		return "", fmt.Errorf("writing manifest: %v", err)
	}

	zipName := packName + "_" + strings.ReplaceAll(g.Version, ".", "_") + ".zip"
	zipPath := filepath.Join(w.OutputDir, zipName)
	if err := zipTree(zipPath, w.OutputDir, packName); err != nil {
		return "", fmt.Errorf("archiving package: %v", err)
	}
	if err := os.RemoveAll(packDir); err != nil {
		return "", fmt.Errorf("removing package tree: %v", err)
	}
	return zipPath, nil
}

// WriteDataPack serializes staged data records as a data package: a
// flat PackOut.xml at the archive root, one element per record in the
// given order, values normalized before emission.
func (w *Writer) WriteDataPack(name, version string, records []DataRecord) (string, error) {
	if version == "" {
		version = "1.0.0"
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<idempiere Name=\"%s\" Version=\"%s\">\n", escapeXML(name), escapeXML(version))
	for _, r := range records {
		fmt.Fprintf(&b, "  <%s action=\"insert\">\n", r.TableName)
		for _, col := range recordColumns(r.Values) {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", col, escapeXML(NormalizeValue(r.Values[col])), col)
		}
		fmt.Fprintf(&b, "  </%s>\n", r.TableName)
	}
	b.WriteString("</idempiere>\n")

	zipPath := filepath.Join(w.OutputDir, name+"_2Pack.zip")
	if err := zipDocument(zipPath, "PackOut.xml", []byte(b.String())); err != nil {
		return "", fmt.Errorf("archiving package: %v", err)
	}
	return zipPath, nil
}

// recordColumns orders a data record's columns: scope and active flags
// first, the rest sorted by name.
func recordColumns(m map[string]string) []string {
	head := []string{}
	for _, k := range []string{"ad_client_id", "ad_org_id", "isactive"} {
		if _, ok := m[k]; ok {
			head = append(head, k)
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "ad_client_id", "ad_org_id", "isactive":
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(head, rest...)
}

func writeElement(b *strings.Builder, e compiler.Element, uu uuFunc) {
	b.WriteString("  <AD_Element type=\"table\">\n")
	child(b, "AD_Element_ID", fmt.Sprintf("%d", e.ID))
	child(b, "AD_Element_UU", uu("AD_Element", e.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "ColumnName", e.ColumnName)
	child(b, "Name", e.Name)
	child(b, "PrintName", e.Name)
	child(b, "EntityType", "U")
	b.WriteString("  </AD_Element>\n")
}

func writeTable(b *strings.Builder, t compiler.Table, uu uuFunc) {
	b.WriteString("  <AD_Table type=\"table\">\n")
	child(b, "AD_Table_ID", fmt.Sprintf("%d", t.ID))
	child(b, "AD_Table_UU", uu("AD_Table", t.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "TableName", t.TableName)
	child(b, "Name", t.Name)
	child(b, "Description", t.Description)
	child(b, "Help", t.Help)
	child(b, "AccessLevel", t.AccessLevel)
	child(b, "EntityType", "U")
	child(b, "IsDeleteable", "Y")
	child(b, "IsHighVolume", "N")
	child(b, "IsView", "N")
	child(b, "IsSecurityEnabled", "N")
	child(b, "IsChangeLog", "Y")
	child(b, "ReplicationType", "L")
	b.WriteString("  </AD_Table>\n")
}

func writeColumn(b *strings.Builder, c compiler.Column, uu uuFunc) {
	b.WriteString("  <AD_Column type=\"table\">\n")
	child(b, "AD_Column_ID", fmt.Sprintf("%d", c.ID))
	child(b, "AD_Column_UU", uu("AD_Column", c.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "AD_Table_ID", fmt.Sprintf("%d", c.TableID))
	child(b, "ColumnName", c.ColumnName)
	child(b, "Name", c.Name)
	child(b, "AD_Reference_ID", fmt.Sprintf("%d", c.ReferenceID))
	child(b, "FieldLength", fmt.Sprintf("%d", c.FieldLength))
	child(b, "SeqNo", fmt.Sprintf("%d", c.SeqNo))
	child(b, "IsMandatory", flag(c.IsMandatory))
	child(b, "IsKey", flag(c.IsKey))
	child(b, "IsIdentifier", "N")
	child(b, "IsParent", "N")
	child(b, "IsUpdateable", "Y")
	child(b, "EntityType", "U")
	if c.ElementID > 0 {
		child(b, "AD_Element_ID", fmt.Sprintf("%d", c.ElementID))
	}
	b.WriteString("  </AD_Column>\n")
}

func writeWindow(b *strings.Builder, w compiler.Window, uu uuFunc) {
	b.WriteString("  <AD_Window type=\"table\">\n")
	child(b, "AD_Window_ID", fmt.Sprintf("%d", w.ID))
	child(b, "AD_Window_UU", uu("AD_Window", w.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "Name", w.Name)
	child(b, "Description", w.Description)
	child(b, "Help", w.Help)
	child(b, "WindowType", "M")
	child(b, "IsSOTrx", "Y")
	child(b, "EntityType", "U")
	b.WriteString("  </AD_Window>\n")
}

func writeTab(b *strings.Builder, t compiler.Tab, uu uuFunc) {
	b.WriteString("  <AD_Tab type=\"table\">\n")
	child(b, "AD_Tab_ID", fmt.Sprintf("%d", t.ID))
	child(b, "AD_Tab_UU", uu("AD_Tab", t.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "AD_Window_ID", fmt.Sprintf("%d", t.WindowID))
	child(b, "AD_Table_ID", fmt.Sprintf("%d", t.TableID))
	child(b, "Name", t.Name)
	child(b, "Description", t.Description)
	child(b, "Help", t.Help)
	child(b, "TabLevel", fmt.Sprintf("%d", t.TabLevel))
	child(b, "SeqNo", fmt.Sprintf("%d", t.SeqNo))
	child(b, "IsSingleRow", "N")
	child(b, "IsReadOnly", "N")
	child(b, "EntityType", "U")
	if t.LinkColumnID > 0 {
		child(b, "AD_Column_ID", fmt.Sprintf("%d", t.LinkColumnID))
	}
	b.WriteString("  </AD_Tab>\n")
}

func writeField(b *strings.Builder, f compiler.Field, uu uuFunc) {
	b.WriteString("  <AD_Field type=\"table\">\n")
	child(b, "AD_Field_ID", fmt.Sprintf("%d", f.ID))
	child(b, "AD_Field_UU", uu("AD_Field", f.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "AD_Tab_ID", fmt.Sprintf("%d", f.TabID))
	child(b, "AD_Column_ID", fmt.Sprintf("%d", f.ColumnID))
	child(b, "Name", f.Name)
	child(b, "SeqNo", fmt.Sprintf("%d", f.SeqNo))
	child(b, "IsDisplayed", flag(f.IsDisplayed))
	child(b, "IsSameLine", "N")
	child(b, "IsReadOnly", "N")
	child(b, "EntityType", "U")
	b.WriteString("  </AD_Field>\n")
}

func writeMenu(b *strings.Builder, m compiler.Menu, uu uuFunc) {
	b.WriteString("  <AD_Menu type=\"table\">\n")
	child(b, "AD_Menu_ID", fmt.Sprintf("%d", m.ID))
	child(b, "AD_Menu_UU", uu("AD_Menu", m.ID))
	child(b, "AD_Client_ID", "0")
	child(b, "AD_Org_ID", "0")
	child(b, "IsActive", "Y")
	child(b, "Name", m.Name)
	child(b, "IsSummary", flag(m.IsSummary))
	child(b, "IsSOTrx", "N")
	child(b, "IsReadOnly", "N")
	child(b, "EntityType", "U")
	if m.Action != "" {
		child(b, "Action", m.Action)
	}
	if m.WindowID > 0 {
		child(b, "AD_Window_ID", fmt.Sprintf("%d", m.WindowID))
	}
	b.WriteString("  </AD_Menu>\n")
}

func child(b *strings.Builder, tag, value string) {
	b.WriteString("    <")
	b.WriteString(tag)
	b.WriteString(">")
	b.WriteString(escapeXML(value))
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">\n")
}
