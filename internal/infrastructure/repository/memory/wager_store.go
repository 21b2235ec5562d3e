package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
)

type recordKey struct {
	userID  int64
	boardID int64
	postID  int64
	side    wager.Side
}

type postRef struct {
	boardID int64
	postID  int64
}

type statKey struct {
	period  time.Time
	userID  int64
	boardID int64
}

type state struct {
	nextUserID  int64
	nextBoardID int64
	users       map[string]identity.User
	boards      map[string]identity.Board
	records     []wager.Record
	recordKeys  map[recordKey]struct{}
	posts       map[postRef]struct{}
	daily       map[statKey]bettingstats.Stat
	monthly     map[statKey]bettingstats.Stat
}

func newState() *state {
	return &state{
		users:      make(map[string]identity.User),
		boards:     make(map[string]identity.Board),
		recordKeys: make(map[recordKey]struct{}),
		posts:      make(map[postRef]struct{}),
		daily:      make(map[statKey]bettingstats.Stat),
		monthly:    make(map[statKey]bettingstats.Stat),
	}
}

func (s *state) clone() *state {
	return &state{
		nextUserID:  s.nextUserID,
		nextBoardID: s.nextBoardID,
		users:       maps.Clone(s.users),
		boards:      maps.Clone(s.boards),
		records:     append([]wager.Record(nil), s.records...),
		recordKeys:  maps.Clone(s.recordKeys),
		posts:       maps.Clone(s.posts),
		daily:       maps.Clone(s.daily),
		monthly:     maps.Clone(s.monthly),
	}
}

// Store keeps facts, identities and aggregates in process memory. A batch
// works on a private copy that replaces the live state only on success, so a
// failed batch leaves nothing behind.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	state   *state
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

func (s *Store) WithinBatch(ctx context.Context, fn func(ctx context.Context, tx wager.BatchTx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	draft := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &batchTx{state: draft, now: s.now}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = draft
	s.mu.Unlock()
	return nil
}

// RecordCount returns the number of stored fact rows.
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.records)
}

type batchTx struct {
	state *state
	now   func() time.Time
}

func (tx *batchTx) EnsureBoard(_ context.Context, slug string) (int64, error) {
	if board, ok := tx.state.boards[slug]; ok {
		return board.ID, nil
	}
	tx.state.nextBoardID++
	board := identity.Board{
		ID:        tx.state.nextBoardID,
		Slug:      slug,
		Name:      slug,
		CreatedAt: tx.now().UTC(),
	}
	tx.state.boards[slug] = board
	return board.ID, nil
}

func (tx *batchTx) EnsureUser(_ context.Context, nickname string) (int64, error) {
	if user, ok := tx.state.users[nickname]; ok {
		return user.ID, nil
	}
	tx.state.nextUserID++
	user := identity.User{
		ID:        tx.state.nextUserID,
		Nickname:  nickname,
		CreatedAt: tx.now().UTC(),
	}
	tx.state.users[nickname] = user
	return user.ID, nil
}

func (tx *batchTx) PostExists(_ context.Context, boardID, postID int64) (bool, error) {
	_, ok := tx.state.posts[postRef{boardID: boardID, postID: postID}]
	return ok, nil
}

func (tx *batchTx) InsertRecords(_ context.Context, records []wager.Record) (int, error) {
	inserted := 0
	for _, record := range records {
		key := recordKey{userID: record.UserID, boardID: record.BoardID, postID: record.PostID, side: record.Side}
		if _, ok := tx.state.recordKeys[key]; ok {
			continue
		}
		tx.state.recordKeys[key] = struct{}{}
		tx.state.posts[postRef{boardID: record.BoardID, postID: record.PostID}] = struct{}{}
		tx.state.records = append(tx.state.records, record)
		inserted++
	}
	return inserted, nil
}

func (tx *batchTx) ListFacts(_ context.Context) ([]bettingstats.Fact, error) {
	facts := make([]bettingstats.Fact, 0, len(tx.state.records))
	for _, record := range tx.state.records {
		facts = append(facts, bettingstats.Fact{
			UserID:   record.UserID,
			BoardID:  record.BoardID,
			PostID:   record.PostID,
			Side:     int16(record.Side),
			Stake:    record.Stake,
			Profit:   record.Payout - record.Stake,
			Deadline: record.Deadline,
		})
	}
	return facts, nil
}

func (tx *batchTx) ReplaceDailyStats(_ context.Context, rows []bettingstats.Stat) error {
	tx.state.daily = indexStats(rows)
	return nil
}

func (tx *batchTx) ReplaceMonthlyStats(_ context.Context, rows []bettingstats.Stat) error {
	tx.state.monthly = indexStats(rows)
	return nil
}

func indexStats(rows []bettingstats.Stat) map[statKey]bettingstats.Stat {
	out := make(map[statKey]bettingstats.Stat, len(rows))
	for _, row := range rows {
		out[statKey{period: row.Period, userID: row.UserID, boardID: row.BoardID}] = row
	}
	return out
}
