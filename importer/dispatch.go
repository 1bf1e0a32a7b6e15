package importer

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// applyRecord introspects the live table, decides insert versus update
// by the record's UUID column, and executes the statement inside the
// run's transaction. Unknown tables are counted and skipped.
func (im *Importer) applyRecord(tx *sql.Tx, rec *openRecord, res *Result) error {
	table := strings.ToLower(rec.table)
	types, err := im.schema.ColumnTypes(table)
	if err != nil {
		return fmt.Errorf("introspecting %s: %v", table, err)
	}
	if len(types) == 0 {
		res.Missing[rec.table]++
		im.logDetail(rec.table, recordName(rec), "MISSING", "table not found in target store")
		fmt.Printf("  ⚠️  Table not found in target store: %s\n", rec.table)
		return nil
	}

	// bind only columns the live table really has
	uuColumn := table + "_uu"
	recordUU := ""
	binds := make(map[string]string)
	for k, v := range rec.values {
		if strings.HasPrefix(k, "_attr_") {
			continue
		}
		lk := strings.ToLower(k)
		if _, live := types[lk]; !live {
			continue
		}
		binds[lk] = v
		if lk == uuColumn {
			recordUU = strings.TrimSpace(v)
		}
	}
	if len(binds) == 0 {
		res.Skipped = append(res.Skipped, rec.table)
		im.logDetail(rec.table, recordName(rec), "SKIPPED", "no recognized columns")
		return nil
	}

	exists := false
	if recordUU != "" && !strings.HasPrefix(strings.ToLower(recordUU), "uuid_generate") {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1::uuid", table, uuColumn)
		var n int
		if err := tx.QueryRow(countQuery, recordUU).Scan(&n); err != nil {
			return fmt.Errorf("checking existing %s: %v", table, err)
		}
		exists = n > 0
	}

	if exists {
		if err := im.updateRecord(tx, table, uuColumn, recordUU, binds, types); err != nil {
			return err
		}
		res.Updated[strings.ToUpper(rec.table)]++
		im.logDetail(rec.table, recordName(rec), "UPDATED", "")
		return nil
	}
	if err := im.insertRecord(tx, table, binds, types); err != nil {
		return err
	}
	res.Inserted[strings.ToUpper(rec.table)]++
	im.logDetail(rec.table, recordName(rec), "INSERTED", "")
	return nil
}

func (im *Importer) insertRecord(tx *sql.Tx, table string, binds, types map[string]string) error {
	// audit columns the package rarely carries; fill them when the
	// live table requires them
	for col, def := range map[string]string{
		"created": "NOW()", "createdby": "0",
		"updated": "NOW()", "updatedby": "0",
	} {
		if _, live := types[col]; !live {
			continue
		}
		if v, ok := binds[col]; !ok || strings.TrimSpace(v) == "" {
			binds[col] = def
		}
	}

	cols := sortedColumns(binds)
	exprs := make([]string, 0, len(cols))
	var args []any
	for _, col := range cols {
		expr, arg, isParam, err := bindValue(col, types[col], binds[col], len(args)+1)
		if err != nil {
			return fmt.Errorf("column %s: %v", col, err)
		}
		exprs = append(exprs, expr)
		if isParam {
			args = append(args, arg)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(exprs, ", "))
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("inserting into %s: %v", table, err)
	}
	return nil
}

func (im *Importer) updateRecord(tx *sql.Tx, table, uuColumn, recordUU string, binds, types map[string]string) error {
	var sets []string
	var args []any
	for _, col := range sortedColumns(binds) {
		switch col {
		case uuColumn, "created", "createdby", "updated", "updatedby":
			continue
		}
		expr, arg, isParam, err := bindValue(col, types[col], binds[col], len(args)+1)
		if err != nil {
			return fmt.Errorf("column %s: %v", col, err)
		}
		sets = append(sets, col+" = "+expr)
		if isParam {
			args = append(args, arg)
		}
	}
	if _, live := types["updated"]; live {
		sets = append(sets, "updated = NOW()")
	}
	if _, live := types["updatedby"]; live {
		sets = append(sets, "updatedby = 0")
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d::uuid",
		table, strings.Join(sets, ", "), uuColumn, len(args)+1)
	args = append(args, recordUU)
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("updating %s: %v", table, err)
	}
	return nil
}

// bindValue turns one package value into a statement expression. SQL
// function placeholders stay expressions; everything else becomes a
// parameter, typed from the live column type and name heuristics.
func bindValue(column, dataType, raw string, idx int) (expr string, arg any, isParam bool, err error) {
	v := strings.TrimSpace(raw)
	upper := strings.ToUpper(v)

	if upper == "NOW()" || upper == "CURRENT_TIMESTAMP" {
		return "NOW()", nil, false, nil
	}
	if strings.HasPrefix(strings.ToLower(v), "uuid_generate") {
		v = uuid.New().String()
	}

	cast := castFor(column, dataType)
	placeholder := fmt.Sprintf("$%d%s", idx, cast)

	if v == "" {
		return placeholder, nil, true, nil
	}

	if numericColumn(column, dataType) {
		if n, aerr := strconv.Atoi(v); aerr == nil {
			return placeholder, n, true, nil
		}
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil {
			return placeholder, f, true, nil
		}
		return "", nil, false, fmt.Errorf("non-numeric value %q", v)
	}

	if strings.HasPrefix(column, "is") {
		switch upper {
		case "TRUE":
			v = "Y"
		case "FALSE":
			v = "N"
		}
	}
	return placeholder, v, true, nil
}

// castFor picks an explicit cast for column types the driver cannot
// infer from a text parameter.
func castFor(column, dataType string) string {
	switch {
	case dataType == "uuid" || strings.HasSuffix(column, "_uu"):
		return "::uuid"
	case strings.HasPrefix(dataType, "timestamp") || dataType == "date" || dateColumn(column):
		return "::timestamp"
	}
	return ""
}

func dateColumn(column string) bool {
	return strings.HasPrefix(column, "date") || strings.HasSuffix(column, "date") ||
		column == "created" || column == "updated"
}

func numericColumn(column, dataType string) bool {
	switch dataType {
	case "numeric", "integer", "bigint", "smallint", "real", "double precision":
		return true
	}
	if strings.HasSuffix(column, "_id") {
		return true
	}
	switch column {
	case "seqno", "tablevel", "fieldlength", "ad_reference_id":
		return true
	}
	return false
}

func sortedColumns(binds map[string]string) []string {
	cols := make([]string, 0, len(binds))
	for col := range binds {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
