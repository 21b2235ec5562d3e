package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

type modelColumn struct {
	name  string
	value any
	key   bool
	keep  bool
}

// UpsertModel inserts model and, on conflict with the columns tagged
// `db:"name,key"`, overwrites every other column except those tagged
// `db:"name,keep"`.
func UpsertModel(table string, model any) (string, []any, error) {
	columns, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	var keys, updates []string
	for _, col := range columns {
		switch {
		case col.key:
			keys = append(keys, col.name)
		case !col.keep:
			updates = append(updates, col.name+" = EXCLUDED."+col.name)
		}
	}
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("model has no key columns")
	}

	suffix := "ON CONFLICT (" + strings.Join(keys, ", ") + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}
	return insertColumns(table, columns).Suffix(suffix).ToSQL()
}

func insertColumns(table string, columns []modelColumn) *InsertBuilder {
	names := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		names[i] = col.name
		values[i] = col.value
	}
	return InsertInto(table).Columns(names...).Values(values...)
}

func modelColumns(model any) ([]modelColumn, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	columns := make([]modelColumn, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		col := modelColumn{name: name, value: value.Field(i).Interface()}
		for opt := range strings.SplitSeq(opts, ",") {
			switch strings.TrimSpace(opt) {
			case "key":
				col.key = true
			case "keep":
				col.keep = true
			}
		}
		columns = append(columns, col)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return columns, nil
}
