package dbutil

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize turns gendry output into PostgreSQL syntax: identifiers quoted with
// backticks become double-quoted, `LIMIT ?,?` becomes `LIMIT ? OFFSET ?` (with the
// two arguments swapped) and `?` placeholders are rebound to `$n`.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	query = strings.ReplaceAll(query, "`", `"`)
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

func pqCode(err error) pq.ErrorCode {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsConflict(err error) bool {
	return pqCode(err) == "23505"
}

func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == "23503"
}

func IsInvalidText(err error) bool {
	return pqCode(err) == "22P02"
}

// IsUnavailable reports errors the caller may retry: the pool could not hand out a
// connection before the acquire deadline, or the server refused new connections.
func IsUnavailable(err error) bool {
	switch pqCode(err) {
	case "53300", "57P03":
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
