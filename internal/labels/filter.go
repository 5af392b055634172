// Package labels decides which GitHub labels count as area labels.
package labels

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyPrefix is returned when a filter is built without a prefix
var ErrEmptyPrefix = errors.New("label prefix is required")

// Filter is a case-insensitive prefix matcher over label names
type Filter struct {
	prefix string
	runes  int
}

// NewPrefixFilter creates a filter matching labels that start with prefix
func NewPrefixFilter(prefix string) (*Filter, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, ErrEmptyPrefix
	}
	return &Filter{prefix: prefix, runes: utf8.RuneCountInString(prefix)}, nil
}

// Prefix returns the configured prefix
func (f *Filter) Prefix() string {
	return f.prefix
}

// Matches reports whether name belongs to the filter's namespace
func (f *Filter) Matches(name string) bool {
	// Case variants may differ in byte length, so compare the first
	// f.runes runes of name rather than a byte slice.
	end := 0
	for i := 0; i < f.runes; i++ {
		if end >= len(name) {
			return false
		}
		_, size := utf8.DecodeRuneInString(name[end:])
		end += size
	}
	return strings.EqualFold(name[:end], f.prefix)
}

// Select returns the names that match, in their original order
func (f *Filter) Select(names []string) []string {
	var matched []string
	for _, n := range names {
		if f.Matches(n) {
			matched = append(matched, n)
		}
	}
	return matched
}
