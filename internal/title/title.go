// Package title renders and parses ID-tagged test titles.
//
// A tagged title looks like "@ID:C1,C2|Sample test title". Reporting tools
// grep on the "@ID:" prefix, so the format must stay byte-for-byte stable.
package title

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	tagPrefix = "@ID:"
	tagEnd    = "|"
)

// Normalize renders case identifiers. An integer n renders as "C{n}", a string
// renders verbatim and slices are flattened recursively and joined by commas.
func Normalize(ids any) string {
	switch v := ids.(type) {
	case nil:
		return ""
	case string:
		return v
	}

	rv := reflect.ValueOf(ids)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Normalize(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "C" + strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "C" + strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(ids)
}

// Prefix composes the title prefix for the given ids.
func Prefix(ids any) string {
	return tagPrefix + Normalize(ids) + tagEnd
}

// Lines joins a multi-line title.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n")
}

// Build generates the title of a test including its ids.
// Example output: "@ID:C1,C2,C3|Sample test title".
func Build(ids any, lines ...string) string {
	return Prefix(ids) + Lines(lines...)
}

// Parse splits a tagged title into its case ids and the remaining title.
// ok is false when the title carries no "@ID:" prefix.
func Parse(s string) (ids []string, rest string, ok bool) {
	if !strings.HasPrefix(s, tagPrefix) {
		return nil, s, false
	}
	tagged := strings.TrimPrefix(s, tagPrefix)
	end := strings.Index(tagged, tagEnd)
	if end < 0 {
		return nil, s, false
	}
	for _, id := range strings.Split(tagged[:end], ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, tagged[end+len(tagEnd):], true
}

// CaseIDs returns the case ids found in title, or nil for untagged titles.
// Describe paths ("Suite > @ID:C1|Title") are tolerated.
func CaseIDs(s string) []string {
	if i := strings.Index(s, tagPrefix); i > 0 {
		s = s[i:]
	}
	ids, _, _ := Parse(s)
	return ids
}
