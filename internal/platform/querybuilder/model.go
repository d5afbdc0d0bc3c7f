package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type modelField struct {
	column string
	index  int
}

var modelPlans sync.Map // reflect.Type -> []modelField

// Columns lists the db-tagged columns of a struct type in field order.
func Columns(model any) ([]string, error) {
	_, fields, err := modelValue(model, false)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols, nil
}

// MustColumns is Columns for package-level column lists.
func MustColumns(model any) []string {
	cols, err := Columns(model)
	if err != nil {
		panic(err)
	}
	return cols
}

// InsertModel builds an INSERT from the db tags of model. suffix is appended
// verbatim, typically an ON CONFLICT clause.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value, fields, err := modelValue(model, true)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = value.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

func modelValue(model any, needValue bool) (reflect.Value, []modelField, error) {
	value := reflect.ValueOf(model)
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		if needValue {
			if value.IsNil() {
				return reflect.Value{}, nil, fmt.Errorf("model cannot be nil")
			}
			value = value.Elem()
		}
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("model must be struct, got %v", typ)
	}

	fields, err := planFor(typ)
	return value, fields, err
}

func planFor(typ reflect.Type) ([]modelField, error) {
	if cached, ok := modelPlans.Load(typ); ok {
		return cached.([]modelField), nil
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, modelField{column: name, index: i})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s has no db columns", typ)
	}

	modelPlans.Store(typ, fields)
	return fields, nil
}
