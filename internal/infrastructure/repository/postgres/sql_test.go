package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get user: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected unrelated error to not be not found")
	}
}

func TestOptionalString(t *testing.T) {
	if optionalString("  ") != nil {
		t.Fatalf("expected nil for blank string")
	}
	got := optionalString(" list page 502 ")
	if got == nil || *got != "list page 502" {
		t.Fatalf("unexpected optional string: %v", got)
	}
}

func TestChunkRange(t *testing.T) {
	var windows [][2]int
	err := chunkRange(5, 2, func(start, end int) error {
		windows = append(windows, [2]int{start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("chunk range: %v", err)
	}
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}}
	if fmt.Sprint(windows) != fmt.Sprint(want) {
		t.Fatalf("unexpected windows: %v", windows)
	}

	errStop := errors.New("stop")
	calls := 0
	err = chunkRange(10, 3, func(int, int) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) || calls != 1 {
		t.Fatalf("expected early stop, calls=%d err=%v", calls, err)
	}
}
