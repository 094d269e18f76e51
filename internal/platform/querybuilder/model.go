package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelColumns maps a struct type to the field indexes of its db-tagged
// columns.
var modelColumns sync.Map

type columnField struct {
	name  string
	index int
}

func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelRow(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

// InsertModels builds one multi-row INSERT from models sharing a struct type.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert models are required")
	}

	builder := InsertInto(table).Suffix(suffix)
	for i, model := range models {
		cols, vals, err := modelRow(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		if i == 0 {
			builder.Columns(cols...)
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

// ColumnCount reports how many db-tagged columns a model type contributes.
func ColumnCount(model any) int {
	value, err := structValue(model)
	if err != nil {
		return 0
	}
	return len(fieldsOf(value.Type()))
}

func modelRow(model any) ([]string, []any, error) {
	value, err := structValue(model)
	if err != nil {
		return nil, nil, err
	}
	fields := fieldsOf(value.Type())
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", value.Type())
	}

	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.name
		vals[i] = value.Field(f.index).Interface()
	}
	return cols, vals, nil
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct, got %s", value.Kind())
	}
	return value, nil
}

func fieldsOf(typ reflect.Type) []columnField {
	if cached, ok := modelColumns.Load(typ); ok {
		return cached.([]columnField)
	}

	var fields []columnField
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, columnField{name: name, index: i})
	}
	modelColumns.Store(typ, fields)
	return fields
}
