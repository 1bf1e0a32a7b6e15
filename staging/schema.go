package staging

import (
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS operations (
	  operation_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  operation_type TEXT,
	  file_path TEXT,
	  target_db TEXT,
	  status TEXT,
	  started_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  completed_at TEXT,
	  tables_count INTEGER DEFAULT 0,
	  columns_count INTEGER DEFAULT 0,
	  windows_count INTEGER DEFAULT 0,
	  errors_count INTEGER DEFAULT 0,
	  notes TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS operation_details (
	  detail_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  operation_id INTEGER,
	  record_type TEXT,
	  record_name TEXT,
	  action TEXT,
	  message TEXT,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  FOREIGN KEY (operation_id) REFERENCES operations(operation_id)
	)`,

	`CREATE TABLE IF NOT EXISTS model_headers (
	  header_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  header_uu TEXT UNIQUE,
	  name TEXT NOT NULL,
	  description TEXT,
	  help TEXT,
	  author TEXT,
	  version TEXT,
	  operation_id INTEGER,
	  status TEXT DEFAULT 'STAGED',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS model_tables (
	  table_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  table_uu TEXT UNIQUE,
	  header_uu TEXT,
	  seq_no INTEGER,
	  name TEXT NOT NULL,
	  master TEXT,
	  column_set TEXT,
	  description TEXT,
	  help TEXT,
	  operation_id INTEGER,
	  status TEXT DEFAULT 'STAGED',
	  ad_table_id INTEGER,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  FOREIGN KEY (header_uu) REFERENCES model_headers(header_uu)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_model_tables_header ON model_tables(header_uu)`,

	`CREATE TABLE IF NOT EXISTS pack_headers (
	  pack_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  pack_uu TEXT UNIQUE,
	  name TEXT NOT NULL,
	  version TEXT DEFAULT '1.0.0',
	  source_file TEXT,
	  ad_client_id INTEGER DEFAULT 0,
	  ad_org_id INTEGER DEFAULT 0,
	  operation_id INTEGER,
	  status TEXT DEFAULT 'STAGED',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS pack_records (
	  record_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  record_uu TEXT UNIQUE,
	  pack_uu TEXT,
	  table_name TEXT NOT NULL,
	  target_id INTEGER,
	  column_data TEXT,
	  seq_no INTEGER,
	  status TEXT DEFAULT 'STAGED',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  FOREIGN KEY (pack_uu) REFERENCES pack_headers(pack_uu)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pack_records_pack ON pack_records(pack_uu)`,
	`CREATE INDEX IF NOT EXISTS idx_pack_records_table ON pack_records(table_name)`,

	`CREATE TABLE IF NOT EXISTS applied_records (
	  applied_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  pack_uu TEXT,
	  table_name TEXT NOT NULL,
	  record_id INTEGER NOT NULL,
	  record_uu TEXT,
	  pk_column TEXT,
	  seq_no INTEGER,
	  applied_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  status TEXT DEFAULT 'APPLIED',
	  FOREIGN KEY (pack_uu) REFERENCES pack_headers(pack_uu)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applied_pack ON applied_records(pack_uu)`,
	`CREATE INDEX IF NOT EXISTS idx_applied_table ON applied_records(table_name)`,
}

// Init creates the staging tables if they do not exist yet.
func (s *Store) Init() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing staging schema: %v", err)
		}
	}
	return nil
}
