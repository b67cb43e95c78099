package repo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// QueryMode turns a statement written with $n placeholders into the text and
// arguments actually sent to the database. Repositories are written once
// against this interface and do not know which mode is active.
type QueryMode interface {
	Bind(query string, args ...any) (string, []any)
}

// NewQueryMode returns Concatenated when unsafe is set, Parameterized otherwise.
func NewQueryMode(unsafe bool) QueryMode {
	if unsafe {
		return Concatenated{}
	}
	return Parameterized{}
}

// Parameterized keeps the query text static and passes every value as a bound parameter.
type Parameterized struct{}

func (Parameterized) Bind(query string, args ...any) (string, []any) {
	return query, args
}

// Concatenated splices values straight into the query text. Strings are quoted
// but NOT escaped, so a single quote in user input ends the literal. This is
// the SQL injection mode and must only run in a lab.
type Concatenated struct{}

var placeholder = regexp.MustCompile(`\$[0-9]+`)

func (Concatenated) Bind(query string, args ...any) (string, []any) {
	// Single pass over the query text: substituted values are never rescanned.
	out := placeholder.ReplaceAllStringFunc(query, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(args) {
			return m
		}
		return literal(args[n-1])
	})
	return out, nil
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + x + "'"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + x.UTC().Format(time.RFC3339Nano) + "'"
	default:
		return "'" + fmt.Sprint(x) + "'"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere, with LIKE
// wildcards in term treated literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
