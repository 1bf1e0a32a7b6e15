package introspect

import (
	"database/sql"
	"fmt"
	"strings"
)

// TableColumn is one live column on the target store.
type TableColumn struct {
	ColumnName string
	DataType   string
}

// Schema answers column metadata questions against the target store,
// caching per table so repeated record dispatch stays cheap. The cache
// lives for one operation; create a fresh Schema per run.
type Schema struct {
	db    *sql.DB
	cache map[string][]TableColumn
}

func NewSchema(db *sql.DB) *Schema {
	return &Schema{
		db:    db,
		cache: make(map[string][]TableColumn),
	}
}

// TableColumns returns the real columns of a table in ordinal order.
// An unknown table yields an empty slice, not an error.
func (s *Schema) TableColumns(tableName string) ([]TableColumn, error) {
	key := strings.ToLower(tableName)
	if cols, ok := s.cache[key]; ok {
		return cols, nil
	}

	columnsQuery := `
	SELECT column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'public' AND LOWER(table_name) = $1
	ORDER BY ordinal_position;
	`

	rows, err := s.db.Query(columnsQuery, key)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %v", err)
	}
	defer rows.Close()

	columns := []TableColumn{}
	for rows.Next() {
		var col TableColumn
		if err := rows.Scan(&col.ColumnName, &col.DataType); err != nil {
			return nil, fmt.Errorf("scanning column: %v", err)
		}
		columns = append(columns, col)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %v", rows.Err())
	}

	s.cache[key] = columns
	return columns, nil
}

// ColumnTypes returns a lowercased column name to data type map for
// case-insensitive lookups.
func (s *Schema) ColumnTypes(tableName string) (map[string]string, error) {
	columns, err := s.TableColumns(tableName)
	if err != nil {
		return nil, err
	}
	types := make(map[string]string, len(columns))
	for _, col := range columns {
		types[strings.ToLower(col.ColumnName)] = col.DataType
	}
	return types, nil
}

// TableExists reports whether the table has any live columns.
func (s *Schema) TableExists(tableName string) (bool, error) {
	columns, err := s.TableColumns(tableName)
	if err != nil {
		return false, err
	}
	return len(columns) > 0, nil
}

// HasColumn reports whether the table carries the named column.
func (s *Schema) HasColumn(tableName, columnName string) (bool, error) {
	types, err := s.ColumnTypes(tableName)
	if err != nil {
		return false, err
	}
	_, ok := types[strings.ToLower(columnName)]
	return ok, nil
}
