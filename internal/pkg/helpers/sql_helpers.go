package helpers

import "strings"

// NilIfEmpty returns nil for blank strings so optional text columns stay NULL.
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimmedPtr trims the pointed-to string, turning blank values into nil.
func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return NilIfEmpty(*s)
}

// LikePattern builds a case-insensitive contains pattern for ILIKE, escaping
// the wildcard characters of the input.
func LikePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}
