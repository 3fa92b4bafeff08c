// ABOUTME: Live schema introspection for SQLite and Postgres stores.
// ABOUTME: Reports columns, foreign keys with their ON DELETE rule, and indexes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TableInfo describes one table as the store sees it.
type TableInfo struct {
	Name        string
	Columns     []ColumnInfo
	ForeignKeys []ForeignKeyInfo
	Indexes     []IndexInfo
}

// ColumnInfo describes a column.
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	Default    *string
	PrimaryKey bool
}

// ForeignKeyInfo describes a foreign key constraint on one column.
type ForeignKeyInfo struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string
}

// IndexInfo describes an index.
type IndexInfo struct {
	Name    string
	Columns []string
	Unique  bool
}

// Column returns the named column, if present.
func (t TableInfo) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// ForeignKey returns the foreign key declared on column, if any.
func (t TableInfo) ForeignKey(column string) (ForeignKeyInfo, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKeyInfo{}, false
}

// Index returns the named index, if present.
func (t TableInfo) Index(name string) (IndexInfo, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexInfo{}, false
}

// DescribeSchema introspects the five tables in dependency order.
func (d *DB) DescribeSchema(ctx context.Context) ([]TableInfo, error) {
	tables := make([]TableInfo, 0, len(Tables))
	for _, name := range Tables {
		var (
			t   TableInfo
			err error
		)
		if d.dialect == DialectPostgres {
			t, err = d.describePostgresTable(ctx, name)
		} else {
			t, err = d.describeSQLiteTable(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (d *DB) describeSQLiteTable(ctx context.Context, name string) (TableInfo, error) {
	t := TableInfo{Name: name}

	rows, err := d.query(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, name)
	if err != nil {
		return t, fmt.Errorf("columns: %w", err)
	}
	for rows.Next() {
		var c ColumnInfo
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan column: %w", err)
		}
		c.Nullable = notNull == 0 && pk == 0
		c.PrimaryKey = pk > 0
		c.Default = nullString(dflt)
		t.Columns = append(t.Columns, c)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return t, err
	}
	if len(t.Columns) == 0 {
		return t, fmt.Errorf("%w: table %s", ErrNotFound, name)
	}

	rows, err = d.query(ctx, `SELECT "table", "from", "to", on_delete FROM pragma_foreign_key_list(?) ORDER BY id`, name)
	if err != nil {
		return t, fmt.Errorf("foreign keys: %w", err)
	}
	for rows.Next() {
		var fk ForeignKeyInfo
		if err := rows.Scan(&fk.RefTable, &fk.Column, &fk.RefColumn, &fk.OnDelete); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan foreign key: %w", err)
		}
		fk.OnDelete = strings.ToUpper(fk.OnDelete)
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return t, err
	}

	rows, err = d.query(ctx, `SELECT name, "unique" FROM pragma_index_list(?) ORDER BY name`, name)
	if err != nil {
		return t, fmt.Errorf("indexes: %w", err)
	}
	for rows.Next() {
		var idx IndexInfo
		var unique int
		if err := rows.Scan(&idx.Name, &unique); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan index: %w", err)
		}
		idx.Unique = unique == 1
		t.Indexes = append(t.Indexes, idx)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return t, err
	}

	for i := range t.Indexes {
		cols, err := d.sqliteIndexColumns(ctx, t.Indexes[i].Name)
		if err != nil {
			return t, err
		}
		t.Indexes[i].Columns = cols
	}

	return t, nil
}

func (d *DB) sqliteIndexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := d.query(ctx, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, index)
	if err != nil {
		return nil, fmt.Errorf("index columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col sql.NullString
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scan index column: %w", err)
		}
		cols = append(cols, col.String)
	}
	return cols, rows.Err()
}

func (d *DB) describePostgresTable(ctx context.Context, name string) (TableInfo, error) {
	t := TableInfo{Name: name}

	pkCols := map[string]bool{}
	rows, err := d.query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = ? AND tc.table_schema = current_schema()
	`, name)
	if err != nil {
		return t, fmt.Errorf("primary key: %w", err)
	}
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan primary key: %w", err)
		}
		pkCols[col] = true
	}
	_ = rows.Close()

	rows, err = d.query(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ?
		ORDER BY ordinal_position
	`, name)
	if err != nil {
		return t, fmt.Errorf("columns: %w", err)
	}
	for rows.Next() {
		var c ColumnInfo
		var nullable string
		var dflt sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &dflt); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan column: %w", err)
		}
		c.Nullable = nullable == "YES"
		c.Default = nullString(dflt)
		c.PrimaryKey = pkCols[c.Name]
		t.Columns = append(t.Columns, c)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return t, err
	}
	if len(t.Columns) == 0 {
		return t, fmt.Errorf("%w: table %s", ErrNotFound, name)
	}

	rows, err = d.query(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name, rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name AND rc.constraint_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_name = ? AND tc.table_schema = current_schema()
		ORDER BY kcu.column_name
	`, name)
	if err != nil {
		return t, fmt.Errorf("foreign keys: %w", err)
	}
	for rows.Next() {
		var fk ForeignKeyInfo
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn, &fk.OnDelete); err != nil {
			_ = rows.Close()
			return t, fmt.Errorf("scan foreign key: %w", err)
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return t, err
	}

	rows, err = d.query(ctx, `
		SELECT indexname, indexdef
		FROM pg_indexes
		WHERE schemaname = current_schema() AND tablename = ?
		ORDER BY indexname
	`, name)
	if err != nil {
		return t, fmt.Errorf("indexes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var idx IndexInfo
		var def string
		if err := rows.Scan(&idx.Name, &def); err != nil {
			return t, fmt.Errorf("scan index: %w", err)
		}
		idx.Unique = strings.Contains(def, "UNIQUE INDEX")
		idx.Columns = indexDefColumns(def)
		t.Indexes = append(t.Indexes, idx)
	}
	return t, rows.Err()
}

// indexDefColumns extracts the column list from a pg_indexes definition
// such as "CREATE INDEX x ON public.sets USING btree (workout_exercise_id, set_number)".
func indexDefColumns(def string) []string {
	open := strings.LastIndex(def, "(")
	end := strings.LastIndex(def, ")")
	if open < 0 || end <= open {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(def[open+1:end], ",") {
		col := strings.Fields(strings.TrimSpace(part))
		if len(col) > 0 {
			cols = append(cols, strings.Trim(col[0], `"`))
		}
	}
	return cols
}
