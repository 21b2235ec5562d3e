package postgres

import (
	"database/sql"
	"errors"
	"strings"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

// chunkRange splits n items into consecutive [start, end) windows of at most
// size items.
func chunkRange(n, size int, fn func(start, end int) error) error {
	if size <= 0 {
		size = n
	}
	for start := 0; start < n; start += size {
		if err := fn(start, min(start+size, n)); err != nil {
			return err
		}
	}
	return nil
}
