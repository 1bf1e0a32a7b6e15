package staging

import (
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// PackHeader is a staged data pack.
type PackHeader struct {
	UUID        string
	Name        string
	Version     string
	SourceFile  string
	ClientID    int
	OrgID       int
	OperationID int64
	Status      string
	CreatedAt   string
	RecordCount int
}

// PackRecord is one staged row destined for the target store. Values
// holds the column-value pairs captured from the source statement.
type PackRecord struct {
	UUID      string
	PackUUID  string
	TableName string
	TargetID  int
	Values    map[string]string
	SeqNo     int
	Status    string
}

// StagePack stores a pack header plus its records in one transaction.
func (s *Store) StagePack(opID int64, name, version, sourceFile string, records []PackRecord) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning pack transaction: %v", err)
	}
	defer tx.Rollback()

	packUU := uuid.New().String()
	if version == "" {
		version = "1.0.0"
	}
	_, err = tx.Exec(
		"INSERT INTO pack_headers (pack_uu, name, version, source_file, operation_id, status) VALUES (?, ?, ?, ?, ?, 'STAGED')",
		packUU, name, version, sourceFile, opID,
	)
	if err != nil {
		return "", fmt.Errorf("staging pack %s: %v", name, err)
	}

	for i, r := range records {
		data, err := json.Marshal(r.Values)
		if err != nil {
			return "", fmt.Errorf("encoding record values: %v", err)
		}
		seqNo := r.SeqNo
		if seqNo == 0 {
			seqNo = i + 1
		}
		_, err = tx.Exec(
			"INSERT INTO pack_records (record_uu, pack_uu, table_name, target_id, column_data, seq_no, status) VALUES (?, ?, ?, ?, ?, ?, 'STAGED')",
			uuid.New().String(), packUU, r.TableName, r.TargetID, string(data), seqNo,
		)
		if err != nil {
			return "", fmt.Errorf("staging record for %s: %v", r.TableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing pack transaction: %v", err)
	}
	return packUU, nil
}

// PackByName finds a staged pack by name.
func (s *Store) PackByName(name string) (*PackHeader, error) {
	row := s.db.QueryRow(
		`SELECT pack_uu, name, COALESCE(version, ''), COALESCE(source_file, ''), ad_client_id, ad_org_id,
		 COALESCE(operation_id, 0), status, created_at,
		 (SELECT COUNT(*) FROM pack_records r WHERE r.pack_uu = pack_headers.pack_uu)
		 FROM pack_headers WHERE name = ? ORDER BY pack_id DESC LIMIT 1`, name)

	var p PackHeader
	err := row.Scan(&p.UUID, &p.Name, &p.Version, &p.SourceFile, &p.ClientID, &p.OrgID,
		&p.OperationID, &p.Status, &p.CreatedAt, &p.RecordCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pack not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying pack %s: %v", name, err)
	}
	return &p, nil
}

// Packs lists all staged packs, newest first.
func (s *Store) Packs() ([]PackHeader, error) {
	rows, err := s.db.Query(
		`SELECT pack_uu, name, COALESCE(version, ''), COALESCE(source_file, ''), ad_client_id, ad_org_id,
		 COALESCE(operation_id, 0), status, created_at,
		 (SELECT COUNT(*) FROM pack_records r WHERE r.pack_uu = pack_headers.pack_uu)
		 FROM pack_headers ORDER BY created_at DESC, pack_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying packs: %v", err)
	}
	defer rows.Close()

	var packs []PackHeader
	for rows.Next() {
		var p PackHeader
		if err := rows.Scan(&p.UUID, &p.Name, &p.Version, &p.SourceFile, &p.ClientID, &p.OrgID,
			&p.OperationID, &p.Status, &p.CreatedAt, &p.RecordCount); err != nil {
			return nil, fmt.Errorf("scanning pack row: %v", err)
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// RecordsForPack returns the pack's records in staged sequence order.
func (s *Store) RecordsForPack(packUU string) ([]PackRecord, error) {
	rows, err := s.db.Query(
		`SELECT record_uu, pack_uu, table_name, COALESCE(target_id, 0), COALESCE(column_data, '{}'), seq_no, status
		 FROM pack_records WHERE pack_uu = ? ORDER BY seq_no`, packUU)
	if err != nil {
		return nil, fmt.Errorf("querying pack records: %v", err)
	}
	defer rows.Close()

	var records []PackRecord
	for rows.Next() {
		var r PackRecord
		var data string
		if err := rows.Scan(&r.UUID, &r.PackUUID, &r.TableName, &r.TargetID, &data, &r.SeqNo, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning pack record: %v", err)
		}
		if err := json.Unmarshal([]byte(data), &r.Values); err != nil {
			return nil, fmt.Errorf("decoding record values: %v", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TableCount pairs a table name with a record count.
type TableCount struct {
	TableName string
	Count     int
}

// PackTableCounts groups a pack's records by table in first-seen order.
func (s *Store) PackTableCounts(packUU string) ([]TableCount, error) {
	rows, err := s.db.Query(
		"SELECT table_name, COUNT(*) FROM pack_records WHERE pack_uu = ? GROUP BY table_name ORDER BY MIN(seq_no)", packUU)
	if err != nil {
		return nil, fmt.Errorf("querying pack table counts: %v", err)
	}
	defer rows.Close()

	var counts []TableCount
	for rows.Next() {
		var c TableCount
		if err := rows.Scan(&c.TableName, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning table count: %v", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// SetPackStatus updates a pack's lifecycle status.
func (s *Store) SetPackStatus(packUU, status string) error {
	_, err := s.db.Exec("UPDATE pack_headers SET status = ? WHERE pack_uu = ?", status, packUU)
	if err != nil {
		return fmt.Errorf("updating pack status: %v", err)
	}
	return nil
}

// SetPackStatusTx is SetPackStatus inside a caller-owned transaction.
func (s *Store) SetPackStatusTx(tx *sql.Tx, packUU, status string) error {
	_, err := tx.Exec("UPDATE pack_headers SET status = ? WHERE pack_uu = ?", status, packUU)
	if err != nil {
		return fmt.Errorf("updating pack status: %v", err)
	}
	return nil
}

// SetRecordStatusTx flips every record of a pack to the given status
// inside a caller-owned transaction.
func (s *Store) SetRecordStatusTx(tx *sql.Tx, packUU, status string) error {
	_, err := tx.Exec("UPDATE pack_records SET status = ? WHERE pack_uu = ?", status, packUU)
	if err != nil {
		return fmt.Errorf("updating record statuses: %v", err)
	}
	return nil
}
