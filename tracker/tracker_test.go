package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ridoystarlord/packpipe/staging"
)

var testDBCounter atomic.Uint64

func openTestStore(t *testing.T) *staging.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:trackertest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := staging.New(db)
	require.NoError(t, store.Init())
	return store
}

func stageSeedPack(t *testing.T, store *staging.Store) string {
	t.Helper()
	packUU, err := store.StagePack(0, "seed", "", "seed.sql", []staging.PackRecord{
		{TableName: "mp_meter", SeqNo: 1, Values: map[string]string{
			"mp_meter_id": "1000001",
			"mp_meter_uu": "uuid_generate_v4()",
			"name":        "Main",
			"created":     "NOW()",
			"isactive":    "Y",
		}},
		{TableName: "a_asset", SeqNo: 2, Values: map[string]string{
			"a_asset_id": "2000001",
			"name":       "Pump",
		}},
	})
	require.NoError(t, err)
	return packUU
}

func trackThreeRows(t *testing.T, store *staging.Store, packUU string) {
	t.Helper()
	tx, err := store.Begin()
	require.NoError(t, err)
	for i, table := range []string{"xx_a", "xx_b", "xx_c"} {
		require.NoError(t, store.TrackAppliedTx(tx, staging.AppliedRecord{
			PackUUID:  packUU,
			TableName: table,
			RecordID:  (i + 1) * 10,
			PKColumn:  table + "_id",
			SeqNo:     i + 1,
		}))
	}
	require.NoError(t, tx.Commit())
	require.NoError(t, store.SetPackStatus(packUU, staging.StatusApplied))
}

func TestApplyPackWritesAndTracks(t *testing.T) {
	store := openTestStore(t)
	packUU := stageSeedPack(t, store)

	target, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer target.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO mp_meter (created, isactive, mp_meter_id, mp_meter_uu, name) VALUES ($1::timestamp, $2, $3, $4::uuid, $5)")).
		WithArgs(sqlmock.AnyArg(), "Y", 1000001, sqlmock.AnyArg(), "Main").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO a_asset (a_asset_id, name) VALUES ($1, $2)")).
		WithArgs(2000001, "Pump").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := New(store, target, 0).ApplyPack("seed")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Tables["mp_meter"])
	assert.Equal(t, 1, res.Tables["a_asset"])

	applied, err := store.AppliedForPack(packUU)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	// reverse sequence order for later cleanup
	assert.Equal(t, "a_asset", applied[0].TableName)
	assert.Equal(t, 2000001, applied[0].RecordID)
	assert.Equal(t, "mp_meter", applied[1].TableName)
	assert.Len(t, applied[1].RecordUUID, 36, "generated UUID tracked")

	pk, err := store.PackByName("seed")
	require.NoError(t, err)
	assert.Equal(t, staging.StatusApplied, pk.Status)

	records, err := store.RecordsForPack(packUU)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, staging.StatusApplied, r.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPackFailureRollsBackEverything(t *testing.T) {
	store := openTestStore(t)
	packUU := stageSeedPack(t, store)

	target, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer target.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mp_meter").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	_, err = New(store, target, 0).ApplyPack("seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mp_meter")

	applied, err := store.AppliedForPack(packUU)
	require.NoError(t, err)
	assert.Empty(t, applied)

	pk, err := store.PackByName("seed")
	require.NoError(t, err)
	assert.Equal(t, staging.StatusFailed, pk.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanPackDeletesInReverseOrder(t *testing.T) {
	store := openTestStore(t)
	packUU := stageSeedPack(t, store)
	trackThreeRows(t, store, packUU)

	target, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer target.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM xx_c WHERE xx_c_id = $1")).
		WithArgs(30).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM xx_b WHERE xx_b_id = $1")).
		WithArgs(20).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM xx_a WHERE xx_a_id = $1")).
		WithArgs(10).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := New(store, target, 0).CleanPack("seed")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Deleted)

	applied, err := store.AppliedForPack(packUU)
	require.NoError(t, err)
	assert.Empty(t, applied, "every row marked deleted")

	pk, err := store.PackByName("seed")
	require.NoError(t, err)
	assert.Equal(t, staging.StatusCleaned, pk.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanPackFailureKeepsEveryStatus(t *testing.T) {
	store := openTestStore(t)
	packUU := stageSeedPack(t, store)
	trackThreeRows(t, store, packUU)

	target, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer target.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM xx_c WHERE xx_c_id = $1")).
		WithArgs(30).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM xx_b WHERE xx_b_id = $1")).
		WithArgs(20).WillReturnError(errors.New("update or delete violates foreign key constraint"))
	mock.ExpectRollback()

	_, err = New(store, target, 0).CleanPack("seed")
	require.Error(t, err)

	// nothing flipped, including the row whose delete succeeded before
	// the failure
	applied, err := store.AppliedForPack(packUU)
	require.NoError(t, err)
	assert.Len(t, applied, 3)

	pk, err := store.PackByName("seed")
	require.NoError(t, err)
	assert.Equal(t, staging.StatusApplied, pk.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanPackWithNothingApplied(t *testing.T) {
	store := openTestStore(t)
	stageSeedPack(t, store)

	target, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer target.Close()

	res, err := New(store, target, 0).CleanPack("seed")
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
