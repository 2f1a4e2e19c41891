package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns extracts column names from struct "db" tags in field order.
// Embedded structs are walked recursively.
//
// Usage:
//
//	columns := ExtractDBColumns[cooling.Sample]()
//	// Returns: ["sampleid", "samplekindid", "expirationdate"]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := getOrCreateTypeMetadata(reflect.TypeOf(zero))
	return meta.columns()
}

// fieldInfo contains pre-computed metadata about a struct field.
type fieldInfo struct {
	index int    // Field index in the struct
	dbTag string // Database column name
}

// typeMetadata contains cached reflection metadata for a type.
type typeMetadata struct {
	fields   []fieldInfo
	embedded []embeddedInfo
}

type embeddedInfo struct {
	index int
	meta  *typeMetadata
}

func (m *typeMetadata) columns() []string {
	var cols []string
	for _, e := range m.embedded {
		cols = append(cols, e.meta.columns()...)
	}
	for _, f := range m.fields {
		cols = append(cols, f.dbTag)
	}
	return cols
}

// typeCache maps reflect.Type to *typeMetadata.
var typeCache sync.Map

// getOrCreateTypeMetadata returns cached metadata, computing it on first use.
func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if t == nil {
		return &typeMetadata{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)

			if field.Anonymous {
				meta.embedded = append(meta.embedded, embeddedInfo{index: i, meta: getOrCreateTypeMetadata(field.Type)})
				continue
			}

			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
		}
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a map keyed by "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	collect(rv, getOrCreateTypeMetadata(rv.Type()), res)
	return res
}

func collect(rv reflect.Value, meta *typeMetadata, res map[string]any) {
	for _, e := range meta.embedded {
		field := rv.Field(e.index)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}
		collect(field, e.meta, res)
	}
	for _, f := range meta.fields {
		res[f.dbTag] = rv.Field(f.index).Interface()
	}
}

// ValuesOf returns the values of v's tagged fields in the order of columns.
// Pair it with ExtractDBColumns for INSERT statements.
func ValuesOf(v any, columns []string) []any {
	m := StructToMap(v)
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = m[c]
	}
	return values
}
