package tracker

import (
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridoystarlord/packpipe/staging"
)

// Tracker applies staged data packs to the target store and reverses
// them later. The staging store and the target store commit separately;
// the target commits first, so tracker rows only become durable after
// the writes they describe.
type Tracker struct {
	store  *staging.Store
	target *sql.DB
	opID   int64

	// detail logs buffer here: the staging store allows one connection
	// and a log write would block while the tracking transaction is open
	pending []detail
}

type detail struct {
	recordType string
	recordName string
	action     string
	message    string
}

// ApplyResult summarizes a pack apply run.
type ApplyResult struct {
	PackName string
	Applied  int
	Tables   map[string]int
}

// CleanResult summarizes a pack cleanup run.
type CleanResult struct {
	PackName string
	Deleted  int
}

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func New(store *staging.Store, target *sql.DB, opID int64) *Tracker {
	return &Tracker{store: store, target: target, opID: opID}
}

// ApplyPack writes every staged record of the named pack to the target
// store in sequence order, tracking each written row for cleanup. All
// target writes share one transaction; any failure rolls everything
// back and marks the pack FAILED.
func (t *Tracker) ApplyPack(packName string) (*ApplyResult, error) {
	pk, err := t.store.PackByName(packName)
	if err != nil {
		return nil, err
	}
	records, err := t.store.RecordsForPack(pk.UUID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no staged records found for pack: %s", packName)
	}

	fmt.Printf("🔧 Applying pack: %s (%d records)\n", packName, len(records))

	targetTx, err := t.target.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning target transaction: %v", err)
	}
	stagingTx, err := t.store.Begin()
	if err != nil {
		targetTx.Rollback()
		return nil, fmt.Errorf("beginning staging transaction: %v", err)
	}

	res := &ApplyResult{PackName: packName, Tables: make(map[string]int)}
	for _, r := range records {
		applied, err := t.applyRecord(targetTx, stagingTx, pk.UUID, r)
		if err != nil {
			targetTx.Rollback()
			stagingTx.Rollback()
			t.pending = nil
			t.store.SetPackStatus(pk.UUID, staging.StatusFailed)
			t.store.LogDetail(t.opID, r.TableName, "", "FAILED", err.Error())
			return nil, fmt.Errorf("applying record %d (%s): %v", r.SeqNo, r.TableName, err)
		}
		res.Applied++
		res.Tables[r.TableName]++
		t.buffer(r.TableName, applied.RecordUUID, "APPLIED", fmt.Sprintf("record %d", r.SeqNo))
	}

	if err := t.store.SetRecordStatusTx(stagingTx, pk.UUID, staging.StatusApplied); err != nil {
		targetTx.Rollback()
		stagingTx.Rollback()
		t.pending = nil
		return nil, err
	}
	if err := t.store.SetPackStatusTx(stagingTx, pk.UUID, staging.StatusApplied); err != nil {
		targetTx.Rollback()
		stagingTx.Rollback()
		t.pending = nil
		return nil, err
	}

	// target first: tracker rows must never describe writes that were
	// rolled back
	if err := targetTx.Commit(); err != nil {
		stagingTx.Rollback()
		t.pending = nil
		t.store.SetPackStatus(pk.UUID, staging.StatusFailed)
		return nil, fmt.Errorf("committing target writes: %v", err)
	}
	if err := stagingTx.Commit(); err != nil {
		log.Printf("⚠️  target committed but tracking commit failed: %v", err)
		t.pending = nil
		return res, fmt.Errorf("committing apply tracking: %v", err)
	}
	t.flush()
	return res, nil
}

// applyRecord inserts one staged record and tracks it. Returns the
// tracked row so the caller can report the generated UUID.
func (t *Tracker) applyRecord(targetTx, stagingTx *sql.Tx, packUU string, r staging.PackRecord) (*staging.AppliedRecord, error) {
	table := strings.ToLower(r.TableName)
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", r.TableName)
	}

	pkColumn := table + "_id"
	ownUU := table + "_uu"
	recordUU := ""

	cols := make([]string, 0, len(r.Values))
	for col, v := range r.Values {
		lc := strings.ToLower(col)
		if strings.TrimSpace(v) == "" && lc != ownUU {
			continue
		}
		cols = append(cols, lc)
	}
	sort.Strings(cols)

	exprs := make([]string, 0, len(cols))
	var args []any
	for _, col := range cols {
		v := strings.TrimSpace(r.Values[originalKey(r.Values, col)])
		if strings.HasSuffix(col, "_uu") && (v == "" || strings.HasPrefix(strings.ToLower(v), "uuid_generate")) {
			v = uuid.New().String()
		}
		if col == ownUU {
			recordUU = v
		}
		expr, arg := bindDataValue(col, v, len(args)+1)
		exprs = append(exprs, expr)
		args = append(args, arg)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(exprs, ", "))
	if _, err := targetTx.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("inserting into %s: %v", table, err)
	}

	recordID, _ := strconv.Atoi(r.Values[originalKey(r.Values, pkColumn)])
	tracked := staging.AppliedRecord{
		PackUUID:   packUU,
		TableName:  table,
		RecordID:   recordID,
		RecordUUID: recordUU,
		PKColumn:   pkColumn,
		SeqNo:      r.SeqNo,
	}
	if err := t.store.TrackAppliedTx(stagingTx, tracked); err != nil {
		return nil, err
	}
	return &tracked, nil
}

// CleanPack deletes every applied row of the named pack from the target
// store in reverse sequence order. A single delete failure aborts the
// whole cleanup and leaves every tracked status unchanged.
func (t *Tracker) CleanPack(packName string) (*CleanResult, error) {
	pk, err := t.store.PackByName(packName)
	if err != nil {
		return nil, err
	}
	applied, err := t.store.AppliedForPack(pk.UUID)
	if err != nil {
		return nil, err
	}
	res := &CleanResult{PackName: packName}
	if len(applied) == 0 {
		return res, nil
	}

	fmt.Printf("🔧 Cleaning pack: %s (%d applied records)\n", packName, len(applied))

	targetTx, err := t.target.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning target transaction: %v", err)
	}
	stagingTx, err := t.store.Begin()
	if err != nil {
		targetTx.Rollback()
		return nil, fmt.Errorf("beginning staging transaction: %v", err)
	}

	for _, row := range applied {
		if err := t.deleteRecord(targetTx, row); err != nil {
			targetTx.Rollback()
			stagingTx.Rollback()
			t.pending = nil
			t.store.LogDetail(t.opID, row.TableName, fmt.Sprintf("%d", row.RecordID), "FAILED", err.Error())
			return nil, fmt.Errorf("deleting record %d from %s: %v", row.RecordID, row.TableName, err)
		}
		if err := t.store.MarkAppliedDeletedTx(stagingTx, row.ID); err != nil {
			targetTx.Rollback()
			stagingTx.Rollback()
			t.pending = nil
			return nil, err
		}
		res.Deleted++
		t.buffer(row.TableName, fmt.Sprintf("%d", row.RecordID), "DELETED", fmt.Sprintf("record %d", row.SeqNo))
	}

	if err := t.store.SetPackStatusTx(stagingTx, pk.UUID, staging.StatusCleaned); err != nil {
		targetTx.Rollback()
		stagingTx.Rollback()
		t.pending = nil
		return nil, err
	}

	if err := targetTx.Commit(); err != nil {
		stagingTx.Rollback()
		t.pending = nil
		return nil, fmt.Errorf("committing target deletes: %v", err)
	}
	if err := stagingTx.Commit(); err != nil {
		log.Printf("⚠️  target committed but tracking commit failed: %v", err)
		t.pending = nil
		return res, fmt.Errorf("committing cleanup tracking: %v", err)
	}
	t.flush()
	return res, nil
}

func (t *Tracker) deleteRecord(targetTx *sql.Tx, row staging.AppliedRecord) error {
	table := strings.ToLower(row.TableName)
	pkColumn := strings.ToLower(row.PKColumn)
	if pkColumn == "" {
		pkColumn = table + "_id"
	}
	if !identPattern.MatchString(table) || !identPattern.MatchString(pkColumn) {
		return fmt.Errorf("invalid identifier %q.%q", row.TableName, row.PKColumn)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, pkColumn)
	if _, err := targetTx.Exec(query, row.RecordID); err != nil {
		return err
	}
	return nil
}

var (
	dateValuePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	intPattern       = regexp.MustCompile(`^\d+$`)
	decimalPattern   = regexp.MustCompile(`^\d+\.\d+$`)
)

// bindDataValue turns one staged value into a placeholder expression
// and the argument bound to it.
func bindDataValue(col, v string, idx int) (string, any) {
	upper := strings.ToUpper(v)
	if upper == "NOW()" || upper == "CURRENT_TIMESTAMP" {
		v = time.Now().Format("2006-01-02 15:04:05")
	}

	switch {
	case strings.HasSuffix(col, "_uu"):
		return fmt.Sprintf("$%d::uuid", idx), v
	case dateValuePattern.MatchString(v) || dateColumn(col):
		return fmt.Sprintf("$%d::timestamp", idx), v
	case intPattern.MatchString(v) && !leadingZero(v):
		n, _ := strconv.Atoi(v)
		return fmt.Sprintf("$%d", idx), n
	case decimalPattern.MatchString(v):
		f, _ := strconv.ParseFloat(v, 64)
		return fmt.Sprintf("$%d", idx), f
	}
	return fmt.Sprintf("$%d", idx), v
}

func dateColumn(col string) bool {
	return strings.HasPrefix(col, "date") || strings.HasSuffix(col, "date") ||
		col == "created" || col == "updated"
}

func leadingZero(v string) bool {
	return len(v) > 1 && v[0] == '0'
}

// originalKey finds the as-staged key matching a lowercased column.
func originalKey(values map[string]string, lower string) string {
	if _, ok := values[lower]; ok {
		return lower
	}
	for k := range values {
		if strings.ToLower(k) == lower {
			return k
		}
	}
	return lower
}

func (t *Tracker) buffer(recordType, recordName, action, message string) {
	t.pending = append(t.pending, detail{recordType, recordName, action, message})
}

// flush writes buffered detail logs once both transactions are closed.
func (t *Tracker) flush() {
	for _, d := range t.pending {
		t.store.LogDetail(t.opID, d.recordType, d.recordName, d.action, d.message)
	}
	t.pending = nil
}
