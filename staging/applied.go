package staging

import (
	"database/sql"
	"fmt"
)

// AppliedRecord tracks one row written to the target store, kept for
// reverse-order cleanup and as an audit trail afterwards.
type AppliedRecord struct {
	ID         int64
	PackUUID   string
	TableName  string
	RecordID   int
	RecordUUID string
	PKColumn   string
	SeqNo      int
	AppliedAt  string
	Status     string
}

// TrackAppliedTx records an applied row inside a caller-owned transaction.
func (s *Store) TrackAppliedTx(tx *sql.Tx, r AppliedRecord) error {
	_, err := tx.Exec(
		"INSERT INTO applied_records (pack_uu, table_name, record_id, record_uu, pk_column, seq_no, status) VALUES (?, ?, ?, ?, ?, ?, 'APPLIED')",
		r.PackUUID, r.TableName, r.RecordID, r.RecordUUID, r.PKColumn, r.SeqNo,
	)
	if err != nil {
		return fmt.Errorf("tracking applied record: %v", err)
	}
	return nil
}

// AppliedForPack returns the pack's applied rows in reverse sequence
// order, the order a cascading delete must follow.
func (s *Store) AppliedForPack(packUU string) ([]AppliedRecord, error) {
	rows, err := s.db.Query(
		`SELECT applied_id, pack_uu, table_name, record_id, COALESCE(record_uu, ''), COALESCE(pk_column, ''),
		 seq_no, applied_at, status
		 FROM applied_records WHERE pack_uu = ? AND status = 'APPLIED' ORDER BY seq_no DESC`, packUU)
	if err != nil {
		return nil, fmt.Errorf("querying applied records: %v", err)
	}
	defer rows.Close()

	var records []AppliedRecord
	for rows.Next() {
		var r AppliedRecord
		if err := rows.Scan(&r.ID, &r.PackUUID, &r.TableName, &r.RecordID, &r.RecordUUID, &r.PKColumn,
			&r.SeqNo, &r.AppliedAt, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning applied record: %v", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// MarkAppliedDeletedTx flips one applied row to DELETED inside a
// caller-owned transaction. The row itself stays for the audit trail.
func (s *Store) MarkAppliedDeletedTx(tx *sql.Tx, appliedID int64) error {
	_, err := tx.Exec("UPDATE applied_records SET status = 'DELETED' WHERE applied_id = ?", appliedID)
	if err != nil {
		return fmt.Errorf("marking applied record deleted: %v", err)
	}
	return nil
}

// AppliedCounts groups a pack's still-applied rows by table.
func (s *Store) AppliedCounts(packUU string) ([]TableCount, error) {
	rows, err := s.db.Query(
		`SELECT table_name, COUNT(*) FROM applied_records
		 WHERE pack_uu = ? AND status = 'APPLIED' GROUP BY table_name ORDER BY MIN(seq_no)`, packUU)
	if err != nil {
		return nil, fmt.Errorf("querying applied counts: %v", err)
	}
	defer rows.Close()

	var counts []TableCount
	for rows.Next() {
		var c TableCount
		if err := rows.Scan(&c.TableName, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning applied count: %v", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
