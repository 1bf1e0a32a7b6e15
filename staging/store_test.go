package staging

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ridoystarlord/packpipe/model"
)

// testDBCounter generates unique names for in-memory test databases.
var testDBCounter atomic.Uint64

// openTestStore creates an isolated in-memory staging store.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	id := testDBCounter.Add(1)
	dsn := fmt.Sprintf("file:stagingtest%d?mode=memory&cache=shared", id)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	s := New(db)
	require.NoError(t, s.Init())
	return s
}

func TestOperationLifecycle(t *testing.T) {
	s := openTestStore(t)

	opID, err := s.BeginOperation("IMPORT", "bundle.zip", "testdb")
	require.NoError(t, err)
	require.Greater(t, opID, int64(0))

	err = s.CompleteOperation(opID, StatusSuccess, Counters{Tables: 2, Columns: 14, Windows: 1})
	require.NoError(t, err)

	ops, err := s.History(10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "IMPORT", ops[0].Type)
	assert.Equal(t, "bundle.zip", ops[0].FilePath)
	assert.Equal(t, StatusSuccess, ops[0].Status)
	assert.Equal(t, 2, ops[0].Tables)
	assert.Equal(t, 14, ops[0].Columns)
	assert.Equal(t, 1, ops[0].Windows)
	assert.NotEmpty(t, ops[0].CompletedAt)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)

	first, err := s.BeginOperation("STAGE", "a.yaml", "")
	require.NoError(t, err)
	second, err := s.BeginOperation("PACKOUT", "HR", "")
	require.NoError(t, err)

	ops, err := s.History(10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, second, ops[0].ID)
	assert.Equal(t, first, ops[1].ID)
	assert.Equal(t, StatusStarted, ops[0].Status)
}

func TestLogDetail(t *testing.T) {
	s := openTestStore(t)

	opID, err := s.BeginOperation("IMPORT", "pack.zip", "")
	require.NoError(t, err)

	s.LogDetail(opID, "AD_Table", "MP_Maintain", "CREATE", "OK")
	s.LogDetail(opID, "AD_Column", "Name", "UPDATE", "OK")

	details, err := s.Details(opID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "AD_Table", details[0].RecordType)
	assert.Equal(t, "MP_Maintain", details[0].RecordName)
	assert.Equal(t, "CREATE", details[0].Action)
	assert.Equal(t, "AD_Column", details[1].RecordType)
}

func TestStageBundle(t *testing.T) {
	s := openTestStore(t)

	opID, err := s.BeginOperation("STAGE", "hr.yaml", "")
	require.NoError(t, err)

	bundle := model.Bundle{
		Name:        "HR",
		Version:     "1.0.0",
		Description: "Human resources",
		Author:      "dev",
		Tables: []model.Table{
			{Name: "Employee", Columns: []string{"Name", "L#Status"}},
			{Name: "Contract", Master: "Employee", Columns: []string{"D#StartDate", "A#Salary"}},
		},
	}

	headerUU, err := s.StageBundle(opID, bundle)
	require.NoError(t, err)
	require.NotEmpty(t, headerUU)

	h, err := s.HeaderByName("HR")
	require.NoError(t, err)
	assert.Equal(t, headerUU, h.UUID)
	assert.Equal(t, "1.0.0", h.Version)
	assert.Equal(t, StatusStaged, h.Status)
	assert.Equal(t, 2, h.TableCount)

	tables, err := s.TablesForHeader(headerUU)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "Employee", tables[0].Name)
	assert.Equal(t, "", tables[0].Master)
	assert.Equal(t, 10, tables[0].SeqNo)
	assert.Equal(t, "Contract", tables[1].Name)
	assert.Equal(t, "Employee", tables[1].Master)
	assert.Equal(t, 20, tables[1].SeqNo)

	cols := tables[1].Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "StartDate", cols[0].Name)
	assert.Equal(t, model.RefDate, cols[0].ReferenceID)
	assert.Equal(t, "Salary", cols[1].Name)
	assert.Equal(t, model.RefAmount, cols[1].ReferenceID)
}

func TestHeaderNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.HeaderByName("Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle not found")
}

func TestSetHeaderStatus(t *testing.T) {
	s := openTestStore(t)

	headerUU, err := s.StageBundle(0, model.Bundle{Name: "M", Tables: []model.Table{{Name: "T"}}})
	require.NoError(t, err)

	require.NoError(t, s.SetHeaderStatus(headerUU, StatusApplied))
	h, err := s.HeaderByName("M")
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, h.Status)
}

func TestStagePackAndRecords(t *testing.T) {
	s := openTestStore(t)

	opID, err := s.BeginOperation("SQL2PACK", "data.sql", "")
	require.NoError(t, err)

	records := []PackRecord{
		{TableName: "mp_meter", TargetID: 101, Values: map[string]string{"mp_meter_id": "101", "name": "Hours"}, SeqNo: 1},
		{TableName: "a_asset", TargetID: 202, Values: map[string]string{"a_asset_id": "202", "name": "Pump"}, SeqNo: 2},
	}

	packUU, err := s.StagePack(opID, "GardenWorld", "", "data.sql", records)
	require.NoError(t, err)

	p, err := s.PackByName("GardenWorld")
	require.NoError(t, err)
	assert.Equal(t, packUU, p.UUID)
	assert.Equal(t, "1.0.0", p.Version)
	assert.Equal(t, StatusStaged, p.Status)
	assert.Equal(t, 2, p.RecordCount)

	got, err := s.RecordsForPack(packUU)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mp_meter", got[0].TableName)
	assert.Equal(t, 101, got[0].TargetID)
	assert.Equal(t, "Hours", got[0].Values["name"])
	assert.Equal(t, "a_asset", got[1].TableName)
	assert.Equal(t, "Pump", got[1].Values["name"])

	counts, err := s.PackTableCounts(packUU)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "mp_meter", counts[0].TableName)
	assert.Equal(t, 1, counts[0].Count)
}

func TestAppliedRecordLifecycle(t *testing.T) {
	s := openTestStore(t)

	packUU, err := s.StagePack(0, "P", "", "p.sql", nil)
	require.NoError(t, err)

	tx, err := s.Begin()
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		err = s.TrackAppliedTx(tx, AppliedRecord{
			PackUUID:  packUU,
			TableName: "mp_meter",
			RecordID:  100 + i,
			PKColumn:  "mp_meter_id",
			SeqNo:     i,
		})
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	applied, err := s.AppliedForPack(packUU)
	require.NoError(t, err)
	require.Len(t, applied, 3)
	// Reverse sequence order for dependency-safe deletes
	assert.Equal(t, 3, applied[0].SeqNo)
	assert.Equal(t, 1, applied[2].SeqNo)

	tx, err = s.Begin()
	require.NoError(t, err)
	require.NoError(t, s.MarkAppliedDeletedTx(tx, applied[0].ID))
	require.NoError(t, tx.Commit())

	remaining, err := s.AppliedForPack(packUU)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 2, remaining[0].SeqNo)

	counts, err := s.AppliedCounts(packUU)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
}

func TestPacksNewestFirst(t *testing.T) {
	s := openTestStore(t)

	_, err := s.StagePack(0, "First", "", "a.sql", nil)
	require.NoError(t, err)
	_, err = s.StagePack(0, "Second", "", "b.sql", nil)
	require.NoError(t, err)

	packs, err := s.Packs()
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "Second", packs[0].Name)
	assert.Equal(t, "First", packs[1].Name)
}
