package staging

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ridoystarlord/packpipe/model"
)

// Header is a staged model bundle header.
type Header struct {
	UUID        string
	Name        string
	Description string
	Help        string
	Author      string
	Version     string
	OperationID int64
	Status      string
	CreatedAt   string
	TableCount  int
}

// TableDef is one staged table definition belonging to a header.
type TableDef struct {
	UUID        string
	HeaderUUID  string
	SeqNo       int
	Name        string
	Master      string
	ColumnSet   string
	Description string
	Help        string
	Status      string
	ADTableID   int
}

// Columns parses the table's column set into column specs.
func (t TableDef) Columns() []model.ColumnSpec {
	return model.ParseColumnSet(t.ColumnSet)
}

// StageBundle stores a bundle header plus its table definitions. The
// whole bundle lands in one transaction, so a failed stage leaves
// nothing behind.
func (s *Store) StageBundle(opID int64, b model.Bundle) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning stage transaction: %v", err)
	}
	defer tx.Rollback()

	headerUU := uuid.New().String()
	_, err = tx.Exec(
		"INSERT INTO model_headers (header_uu, name, description, author, version, operation_id, status) VALUES (?, ?, ?, ?, ?, ?, 'STAGED')",
		headerUU, b.Name, b.Description, b.Author, b.Version, opID,
	)
	if err != nil {
		return "", fmt.Errorf("staging header %s: %v", b.Name, err)
	}

	for i, t := range b.Tables {
		columnSet := strings.Join(t.Columns, ",")
		_, err = tx.Exec(
			"INSERT INTO model_tables (table_uu, header_uu, seq_no, name, master, column_set, description, help, operation_id, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'STAGED')",
			uuid.New().String(), headerUU, (i+1)*10, t.Name, t.Master, columnSet, t.Description, t.Help, opID,
		)
		if err != nil {
			return "", fmt.Errorf("staging table %s: %v", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing stage transaction: %v", err)
	}
	return headerUU, nil
}

// HeaderByName finds a staged header by bundle name.
func (s *Store) HeaderByName(name string) (*Header, error) {
	row := s.db.QueryRow(
		`SELECT header_uu, name, COALESCE(description, ''), COALESCE(help, ''), COALESCE(author, ''),
		 COALESCE(version, ''), COALESCE(operation_id, 0), status, created_at,
		 (SELECT COUNT(*) FROM model_tables t WHERE t.header_uu = model_headers.header_uu)
		 FROM model_headers WHERE name = ? ORDER BY header_id DESC LIMIT 1`, name)

	var h Header
	err := row.Scan(&h.UUID, &h.Name, &h.Description, &h.Help, &h.Author, &h.Version,
		&h.OperationID, &h.Status, &h.CreatedAt, &h.TableCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bundle not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying header %s: %v", name, err)
	}
	return &h, nil
}

// Headers lists all staged headers, newest first.
func (s *Store) Headers() ([]Header, error) {
	rows, err := s.db.Query(
		`SELECT header_uu, name, COALESCE(description, ''), COALESCE(help, ''), COALESCE(author, ''),
		 COALESCE(version, ''), COALESCE(operation_id, 0), status, created_at,
		 (SELECT COUNT(*) FROM model_tables t WHERE t.header_uu = model_headers.header_uu)
		 FROM model_headers ORDER BY header_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying headers: %v", err)
	}
	defer rows.Close()

	var headers []Header
	for rows.Next() {
		var h Header
		if err := rows.Scan(&h.UUID, &h.Name, &h.Description, &h.Help, &h.Author, &h.Version,
			&h.OperationID, &h.Status, &h.CreatedAt, &h.TableCount); err != nil {
			return nil, fmt.Errorf("scanning header row: %v", err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

// TablesForHeader returns the header's table definitions ordered by sequence.
func (s *Store) TablesForHeader(headerUU string) ([]TableDef, error) {
	rows, err := s.db.Query(
		`SELECT table_uu, header_uu, seq_no, name, COALESCE(master, ''), COALESCE(column_set, ''),
		 COALESCE(description, ''), COALESCE(help, ''), status, COALESCE(ad_table_id, 0)
		 FROM model_tables WHERE header_uu = ? ORDER BY seq_no`, headerUU)
	if err != nil {
		return nil, fmt.Errorf("querying tables for header: %v", err)
	}
	defer rows.Close()

	var tables []TableDef
	for rows.Next() {
		var t TableDef
		if err := rows.Scan(&t.UUID, &t.HeaderUUID, &t.SeqNo, &t.Name, &t.Master, &t.ColumnSet,
			&t.Description, &t.Help, &t.Status, &t.ADTableID); err != nil {
			return nil, fmt.Errorf("scanning table row: %v", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// SetHeaderStatus updates a staged header's lifecycle status.
func (s *Store) SetHeaderStatus(headerUU, status string) error {
	_, err := s.db.Exec("UPDATE model_headers SET status = ? WHERE header_uu = ?", status, headerUU)
	if err != nil {
		return fmt.Errorf("updating header status: %v", err)
	}
	return nil
}

// SetTableApplied records the id a staged table received in the target store.
func (s *Store) SetTableApplied(tableUU string, adTableID int) error {
	_, err := s.db.Exec("UPDATE model_tables SET status = 'APPLIED', ad_table_id = ? WHERE table_uu = ?", adTableID, tableUU)
	if err != nil {
		return fmt.Errorf("updating table status: %v", err)
	}
	return nil
}
