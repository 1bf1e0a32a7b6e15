package importer

import (
	"bytes"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ridoystarlord/packpipe/introspect"
	"github.com/ridoystarlord/packpipe/pack"
	"github.com/ridoystarlord/packpipe/staging"
)

// Importer streams a wire package into the target store, dispatching
// every recognized element as an insert-or-update. All dispatches share
// one transaction; any record error rolls the whole run back.
type Importer struct {
	target *sql.DB
	schema *introspect.Schema
	store  *staging.Store
	opID   int64
	DryRun bool
}

// Result summarizes one import run.
type Result struct {
	Status   string
	Inserted map[string]int
	Updated  map[string]int
	Skipped  []string
	Missing  map[string]int
	Errors   int
}

func newResult() *Result {
	return &Result{
		Inserted: make(map[string]int),
		Updated:  make(map[string]int),
		Missing:  make(map[string]int),
	}
}

// Applied is the number of records written (or rewritten) by the run.
func (r *Result) Applied() int {
	n := 0
	for _, c := range r.Inserted {
		n += c
	}
	for _, c := range r.Updated {
		n += c
	}
	return n
}

// New builds an importer bound to a target store. The staging store is
// used only for detail logging; it may carry opID zero when no
// operation record exists.
func New(target *sql.DB, store *staging.Store, opID int64) *Importer {
	return &Importer{
		target: target,
		schema: introspect.NewSchema(target),
		store:  store,
		opID:   opID,
	}
}

// ImportPackage reads a package archive or bare manifest document and
// applies every recognized record to the target store.
func (im *Importer) ImportPackage(path string) (*Result, error) {
	data, err := pack.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	fmt.Printf("📦 Importing package: %s\n", filepath.Base(path))
	return im.ImportDocument(data)
}

// ImportDocument applies a manifest document already held in memory.
func (im *Importer) ImportDocument(data []byte) (*Result, error) {
	res := newResult()

	tx, err := im.target.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %v", err)
	}

	if err := im.scan(data, tx, res); err != nil {
		tx.Rollback()
		res.Status = staging.StatusFailed
		return res, fmt.Errorf("reading package document: %v", err)
	}

	switch {
	case im.DryRun:
		tx.Rollback()
		res.Status = staging.StatusDryRun
		fmt.Println("💡 Dry run: all changes rolled back")
	case res.Errors > 0:
		tx.Rollback()
		res.Status = staging.StatusPartial
		fmt.Printf("⚠️  %d record(s) failed, transaction rolled back\n", res.Errors)
	default:
		if err := tx.Commit(); err != nil {
			res.Status = staging.StatusFailed
			return res, fmt.Errorf("committing import: %v", err)
		}
		res.Status = staging.StatusSuccess
	}
	return res, nil
}

// openRecord is one element currently being accumulated. Records nest
// in the live-export package shape, so open records form a stack.
type openRecord struct {
	table      string
	values     map[string]string
	currentCol string
	buf        bytes.Buffer
	skip       bool
}

func (r *openRecord) valueCount() int {
	n := 0
	for k := range r.values {
		if !strings.HasPrefix(k, "_attr_") {
			n++
		}
	}
	return n
}

func (im *Importer) scan(data []byte, tx *sql.Tx, res *Result) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*openRecord

	top := func() *openRecord {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tag := t.Name.Local
			kind := Classify(tag, hasActionAttr(t))
			switch kind {
			case KindRecord, KindUnknownEntity:
				rec := &openRecord{table: tag, values: make(map[string]string)}
				for _, a := range t.Attr {
					rec.values["_attr_"+a.Name.Local] = a.Value
				}
				if kind == KindUnknownEntity {
					rec.skip = true
					res.Skipped = append(res.Skipped, tag)
					im.logDetail(tag, "", "SKIPPED", "unrecognized element type")
					fmt.Printf("  ⚠️  Skipping unrecognized element: %s\n", tag)
				}
				stack = append(stack, rec)
			case KindValue:
				if rec := top(); rec != nil {
					rec.currentCol = tag
					rec.buf.Reset()
				}
			}

		case xml.CharData:
			if rec := top(); rec != nil && rec.currentCol != "" {
				rec.buf.Write(t)
			}

		case xml.EndElement:
			tag := t.Name.Local
			rec := top()
			if rec == nil {
				continue
			}
			if rec.currentCol == tag {
				rec.values[rec.currentCol] = strings.TrimSpace(rec.buf.String())
				rec.currentCol = ""
				continue
			}
			if rec.table == tag {
				stack = stack[:len(stack)-1]
				if rec.skip {
					continue
				}
				if rec.valueCount() <= 1 {
					res.Skipped = append(res.Skipped, tag)
					im.logDetail(tag, "", "SKIPPED", "element carries no record values")
					continue
				}
				if err := im.applyRecord(tx, rec, res); err != nil {
					res.Errors++
					im.logDetail(rec.table, recordName(rec), "FAILED", err.Error())
					fmt.Printf("  ❌ %s: %v\n", rec.table, err)
				}
			}
		}
	}
	return nil
}

func hasActionAttr(t xml.StartElement) bool {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, "action") {
			return true
		}
	}
	return false
}

// recordName picks something human-readable for the log trail.
func recordName(rec *openRecord) string {
	for _, key := range []string{"Name", "name", "ColumnName", "TableName"} {
		if v, ok := rec.values[key]; ok && v != "" {
			return v
		}
	}
	for k, v := range rec.values {
		if strings.HasSuffix(strings.ToLower(k), "_uu") {
			return v
		}
	}
	return ""
}

func (im *Importer) logDetail(recordType, recordName, action, message string) {
	if im.store == nil {
		return
	}
	im.store.LogDetail(im.opID, recordType, recordName, action, message)
}
