package staging

import (
	"database/sql"
	"fmt"
	"log"
)

// Operation statuses.
const (
	StatusStarted = "STARTED"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusPartial = "PARTIAL"
	StatusDryRun  = "DRY_RUN"
)

// Record statuses.
const (
	StatusStaged     = "STAGED"
	StatusApplied    = "APPLIED"
	StatusRolledBack = "ROLLED_BACK"
	StatusCleaned    = "CLEANED"
	StatusDeleted    = "DELETED"
)

// Store wraps the local staging database. Every pipeline operation
// records its outcome here, so history survives failed runs.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

// Counters summarizes what an operation touched.
type Counters struct {
	Tables  int
	Columns int
	Windows int
	Errors  int
}

// Operation is one row of the operation log.
type Operation struct {
	ID          int64
	Type        string
	FilePath    string
	TargetDB    string
	Status      string
	StartedAt   string
	CompletedAt string
	Tables      int
	Columns     int
	Windows     int
	Errors      int
}

// BeginOperation opens a new operation log entry and returns its id.
func (s *Store) BeginOperation(opType, target, targetDB string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO operations (operation_type, file_path, target_db, status) VALUES (?, ?, ?, 'STARTED')",
		opType, target, targetDB,
	)
	if err != nil {
		return 0, fmt.Errorf("starting operation: %v", err)
	}
	return res.LastInsertId()
}

// CompleteOperation finalizes an operation log entry with its status and counters.
func (s *Store) CompleteOperation(id int64, status string, c Counters) error {
	_, err := s.db.Exec(
		`UPDATE operations SET status = ?, completed_at = CURRENT_TIMESTAMP,
		 tables_count = ?, columns_count = ?, windows_count = ?, errors_count = ?
		 WHERE operation_id = ?`,
		status, c.Tables, c.Columns, c.Windows, c.Errors, id,
	)
	if err != nil {
		return fmt.Errorf("completing operation: %v", err)
	}
	return nil
}

// LogDetail appends one detail log entry. Logging failures never abort
// the primary operation.
func (s *Store) LogDetail(opID int64, recordType, recordName, action, message string) {
	_, err := s.db.Exec(
		"INSERT INTO operation_details (operation_id, record_type, record_name, action, message) VALUES (?, ?, ?, ?, ?)",
		opID, recordType, recordName, action, message,
	)
	if err != nil {
		log.Printf("detail log failed: %v", err)
	}
}

// History returns the most recent operations, newest first.
func (s *Store) History(limit int) ([]Operation, error) {
	rows, err := s.db.Query(
		`SELECT operation_id, operation_type, file_path, COALESCE(target_db, ''), status,
		 started_at, COALESCE(completed_at, ''), tables_count, columns_count, windows_count, errors_count
		 FROM operations ORDER BY operation_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %v", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		if err := rows.Scan(&op.ID, &op.Type, &op.FilePath, &op.TargetDB, &op.Status,
			&op.StartedAt, &op.CompletedAt, &op.Tables, &op.Columns, &op.Windows, &op.Errors); err != nil {
			return nil, fmt.Errorf("scanning history row: %v", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Detail is one row of the per-operation detail log.
type Detail struct {
	OperationID int64
	RecordType  string
	RecordName  string
	Action      string
	Message     string
	CreatedAt   string
}

// Details returns the detail log for one operation in insertion order.
func (s *Store) Details(opID int64) ([]Detail, error) {
	rows, err := s.db.Query(
		`SELECT operation_id, record_type, record_name, action, COALESCE(message, ''), created_at
		 FROM operation_details WHERE operation_id = ? ORDER BY detail_id`, opID)
	if err != nil {
		return nil, fmt.Errorf("querying details: %v", err)
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.OperationID, &d.RecordType, &d.RecordName, &d.Action, &d.Message, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning detail row: %v", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
