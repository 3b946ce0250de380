// Package sqlbuild turns whitelisted request payloads into parameterized
// INSERT and UPDATE statements for PostgreSQL.
//
// A payload struct is its own whitelist: only fields carrying a `db` tag
// are considered, and nil pointer fields are treated as absent, so a
// partial JSON body only touches the columns it names.
package sqlbuild

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrNoFields is returned when a payload names no writable column.
var ErrNoFields = errors.New("no fields to write")

// Pick collects the present `db`-tagged fields of v (a struct or pointer to
// struct) keyed by column name. Nil pointers are skipped; non-nil pointers
// are dereferenced.
func Pick(v any) map[string]any {
	out := make(map[string]any)

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		column := field.Tag.Get("db")
		if column == "" || column == "-" || !field.IsExported() {
			continue
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		out[column] = fv.Interface()
	}

	return out
}

// BuildInsert renders `INSERT INTO table (...) VALUES ($1, ...)` with
// columns in sorted order. A non-empty returning list is appended as a
// RETURNING clause.
func BuildInsert(table string, cols map[string]any, returning string) (string, []any, error) {
	if len(cols) == 0 {
		return "", nil, ErrNoFields
	}

	keys := sortedKeys(cols)
	names := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		names[i] = QuoteIdent(k)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = cols[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if returning != "" {
		query += " RETURNING " + returning
	}

	return query, args, nil
}

// BuildUpdate renders `UPDATE table SET a = $1, ... WHERE idCol = $n`. The
// id is always the last argument.
func BuildUpdate(table string, cols map[string]any, idCol string, id any, returning string) (string, []any, error) {
	if len(cols) == 0 {
		return "", nil, ErrNoFields
	}

	keys := sortedKeys(cols)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = fmt.Sprintf("%s = $%d", QuoteIdent(k), i+1)
		args = append(args, cols[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		QuoteIdent(table), strings.Join(sets, ", "), QuoteIdent(idCol), len(args))
	if returning != "" {
		query += " RETURNING " + returning
	}

	return query, args, nil
}

// QuoteIdent quotes a PostgreSQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sortedKeys(cols map[string]any) []string {
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
