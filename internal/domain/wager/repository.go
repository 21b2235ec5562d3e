package wager

import (
	"context"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
)

// Store runs one ingestion batch inside a single transaction. If fn returns
// an error nothing written through tx is persisted.
type Store interface {
	WithinBatch(ctx context.Context, fn func(ctx context.Context, tx BatchTx) error) error
}

// BatchTx is the write surface available while a batch is open.
type BatchTx interface {
	// EnsureBoard and EnsureUser create the row when missing and return its id.
	// Both must be backed by a uniqueness constraint with conflict-ignore.
	EnsureBoard(ctx context.Context, slug string) (int64, error)
	EnsureUser(ctx context.Context, nickname string) (int64, error)
	PostExists(ctx context.Context, boardID, postID int64) (bool, error)
	// InsertRecords writes all records in one statement and ignores rows that
	// collide on (user, board, post, side). It returns the number inserted.
	InsertRecords(ctx context.Context, records []Record) (int, error)

	bettingstats.RecomputeTx
}
