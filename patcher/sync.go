package patcher

import (
	"database/sql"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// node is a generic document tree node. The sync path re-serializes the
// whole document, unlike the line-based field patch.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*node    `xml:",any"`
}

// SyncResult summarizes one store-sync run.
type SyncResult struct {
	Updated  int
	Skipped  int
	NotFound int
}

// SyncFromStore re-reads every locally-owned watched element's
// authoritative fields from the target store and overwrites the
// document values in place. Base-owned elements are counted as skipped
// and never touched. An empty outPath rewrites the document in place.
func SyncFromStore(docPath string, db *sql.DB, outPath string) (*SyncResult, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("reading package document: %v", err)
	}

	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing package document: %v", err)
	}

	if outPath == "" {
		outPath = docPath
	}

	res := &SyncResult{}
	if err := syncNode(&root, db, res); err != nil {
		return nil, err
	}

	if res.Updated > 0 || outPath != docPath {
		tidy(&root)
		out, err := xml.MarshalIndent(&root, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("serializing package document: %v", err)
		}
		doc := append([]byte(xml.Header), out...)
		doc = append(doc, '\n')
		if err := os.WriteFile(outPath, doc, 0644); err != nil {
			return nil, fmt.Errorf("writing package document: %v", err)
		}
	}
	return res, nil
}

func syncNode(n *node, db *sql.DB, res *SyncResult) error {
	if watched(n.XMLName.Local) {
		if err := syncElement(n, db, res); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := syncNode(child, db, res); err != nil {
			return err
		}
	}
	return nil
}

// syncElement refreshes one watched element. Elements by ColumnName
// carry a print name; menus have no help text.
func syncElement(n *node, db *sql.DB, res *SyncResult) error {
	if childText(n, "EntityType") != "U" {
		res.Skipped++
		return nil
	}

	kind := n.XMLName.Local
	switch kind {
	case "AD_Element":
		columnName := childText(n, "ColumnName")
		if columnName == "" {
			res.Skipped++
			return nil
		}
		var name, printName, description, help string
		err := db.QueryRow(
			"SELECT COALESCE(name, ''), COALESCE(printname, ''), COALESCE(description, ''), COALESCE(help, '') FROM ad_element WHERE columnname = $1 AND entitytype = 'U'",
			columnName).Scan(&name, &printName, &description, &help)
		if err == sql.ErrNoRows {
			res.NotFound++
			return nil
		}
		if err != nil {
			return fmt.Errorf("querying ad_element %s: %v", columnName, err)
		}
		changed := setChildText(n, "Name", name)
		changed = setChildText(n, "PrintName", printName) || changed
		changed = setChildText(n, "Description", description) || changed
		changed = setChildText(n, "Help", help) || changed
		if changed {
			res.Updated++
		}
		return nil

	case "AD_Menu":
		id, ok := elementID(n, kind)
		if !ok {
			res.Skipped++
			return nil
		}
		var name, description string
		err := db.QueryRow(
			"SELECT COALESCE(name, ''), COALESCE(description, '') FROM ad_menu WHERE ad_menu_id = $1 AND entitytype = 'U'",
			id).Scan(&name, &description)
		if err == sql.ErrNoRows {
			res.NotFound++
			return nil
		}
		if err != nil {
			return fmt.Errorf("querying ad_menu %d: %v", id, err)
		}
		changed := setChildText(n, "Name", name)
		changed = setChildText(n, "Description", description) || changed
		if changed {
			res.Updated++
		}
		return nil

	default:
		id, ok := elementID(n, kind)
		if !ok {
			res.Skipped++
			return nil
		}
		table := strings.ToLower(kind)
		query := fmt.Sprintf(
			"SELECT COALESCE(name, ''), COALESCE(description, ''), COALESCE(help, '') FROM %s WHERE %s_id = $1 AND entitytype = 'U'",
			table, table)

		var name, description, help string
		err := db.QueryRow(query, id).Scan(&name, &description, &help)
		if err == sql.ErrNoRows {
			res.NotFound++
			return nil
		}
		if err != nil {
			return fmt.Errorf("querying %s %d: %v", table, id, err)
		}
		changed := setChildText(n, "Name", name)
		changed = setChildText(n, "Description", description) || changed
		changed = setChildText(n, "Help", help) || changed
		if changed {
			res.Updated++
		}
		return nil
	}
}

func watched(tag string) bool {
	for _, kind := range watchedKinds {
		if kind == tag {
			return true
		}
	}
	return false
}

func elementID(n *node, kind string) (int, bool) {
	id, err := strconv.Atoi(childText(n, kind+"_ID"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func childText(n *node, tag string) string {
	for _, child := range n.Children {
		if strings.EqualFold(child.XMLName.Local, tag) {
			return strings.TrimSpace(child.Content)
		}
	}
	return ""
}

// setChildText overwrites an existing child's value; it never creates
// missing children. Reports whether the value actually changed.
func setChildText(n *node, tag, value string) bool {
	for _, child := range n.Children {
		if strings.EqualFold(child.XMLName.Local, tag) {
			if strings.TrimSpace(child.Content) == value {
				return false
			}
			child.Content = value
			return true
		}
	}
	return false
}

// tidy drops the indentation whitespace captured as chardata on
// container nodes so re-serialization stays clean.
func tidy(n *node) {
	if len(n.Children) > 0 && strings.TrimSpace(n.Content) == "" {
		n.Content = ""
	}
	for _, child := range n.Children {
		tidy(child)
	}
}
