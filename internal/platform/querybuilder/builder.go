package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxBindParameters is the postgres wire protocol limit per statement.
const MaxBindParameters = 65535

// bindings collects positional arguments and hands out their $N markers.
type bindings struct {
	values []any
}

func (b *bindings) bind(value any) string {
	b.values = append(b.values, value)
	return "$" + strconv.Itoa(len(b.values))
}

type Condition interface {
	render(sql *strings.Builder, binds *bindings)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(sql *strings.Builder, binds *bindings) {
	sql.WriteString(c.column + " = " + binds.bind(c.value))
}

type idsCondition struct {
	column string
	ids    []int64
}

// InInt64 matches any of the ids. An empty list matches nothing.
func InInt64(column string, ids []int64) Condition {
	return idsCondition{column: column, ids: append([]int64(nil), ids...)}
}

func (c idsCondition) render(sql *strings.Builder, binds *bindings) {
	if len(c.ids) == 0 {
		sql.WriteString("1=0")
		return
	}
	markers := make([]string, len(c.ids))
	for i, id := range c.ids {
		markers[i] = binds.bind(id)
	}
	sql.WriteString(c.column + " IN (" + strings.Join(markers, ", ") + ")")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select columns are required")
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		sql   strings.Builder
		binds bindings
	)
	fmt.Fprintf(&sql, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	for i, cond := range b.where {
		if i == 0 {
			sql.WriteString(" WHERE ")
		} else {
			sql.WriteString(" AND ")
		}
		cond.render(&sql, &binds)
	}
	if b.limit > 0 {
		sql.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	return sql.String(), binds.values, nil
}

// InsertBuilder renders a single or multi-row INSERT with an optional
// ON CONFLICT/RETURNING suffix.
type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}
	if total := len(b.rows) * len(b.columns); total > MaxBindParameters {
		return "", nil, fmt.Errorf("insert needs %d bind parameters, limit is %d", total, MaxBindParameters)
	}

	binds := bindings{values: make([]any, 0, len(b.rows)*len(b.columns))}
	tuples := make([]string, len(b.rows))
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		markers := make([]string, len(row))
		for j, value := range row {
			markers[j] = binds.bind(value)
		}
		tuples[i] = "(" + strings.Join(markers, ", ") + ")"
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		b.table, strings.Join(b.columns, ", "), strings.Join(tuples, ", "))
	if b.suffix != "" {
		sql += " " + b.suffix
	}
	return sql, binds.values, nil
}
