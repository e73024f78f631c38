// Package names derives environment variable names from type-tree paths.
//
// A path is a chain of record field names and sequence indices. Field names
// are tokenized from Go CamelCase, upper-cased and joined with the
// separator; indices are rendered as decimal numerals. Two reserved marker
// suffixes make otherwise-invisible choices explicit: "LEN" declares a
// sequence length and "IS_NONE__" (double trailing underscore) forces an
// optional value to nil.
package names

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	// LengthMarker is the suffix of the explicit sequence-length variable.
	LengthMarker = "LEN"
	// NoneMarker is the suffix of the explicit-nil variable of optionals.
	NoneMarker = "IS_NONE__"
)

// Join appends a field segment to a parent name. The segment is converted
// to UPPER_SNAKE form; an empty parent yields the segment alone.
func Join(parent, segment, sep string) string {
	name := UpperSnake(segment)
	if parent == "" {
		return name
	}

	return parent + sep + name
}

// Index returns the name of the sequence element at index i under parent.
func Index(parent string, i int, sep string) string {
	if parent == "" {
		return strconv.Itoa(i)
	}

	return parent + sep + strconv.Itoa(i)
}

// Length returns the explicit-length marker name for a sequence at parent.
func Length(parent, sep string) string {
	if parent == "" {
		return LengthMarker
	}

	return parent + sep + LengthMarker
}

// ExplicitNone returns the explicit-nil marker name for an optional at parent.
func ExplicitNone(parent, sep string) string {
	if parent == "" {
		return NoneMarker
	}

	return parent + sep + NoneMarker
}

// UpperSnake converts an identifier to UPPER_SNAKE form.
// Examples:
//   - "Port" -> "PORT"
//   - "OrderID" -> "ORDER_ID"
//   - "getHTTPResponse" -> "GET_HTTP_RESPONSE"
//   - "already_snake" -> "ALREADY_SNAKE"
func UpperSnake(s string) string {
	tokens := tokenize(s)
	for i, tok := range tokens {
		tokens[i] = strings.ToUpper(tok)
	}

	return strings.Join(tokens, "_")
}

// tokenize splits a CamelCase, camelCase or snake_case identifier into tokens.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && startsNewToken(runes, i) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsNewToken reports whether a new token starts at position i.
func startsNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)
	isPrevSep := isSeparator(prev)

	// Lowercase to uppercase transition: "orderId" -> split before 'I'.
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// End of an acronym: "HTTPResponse" -> split before 'R'.
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	// Digit runs stick to the preceding token: "Int8" -> one token.
	return false
}
