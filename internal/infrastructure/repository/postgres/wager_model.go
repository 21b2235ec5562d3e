package postgres

import (
	"database/sql"
	"time"
)

type factRow struct {
	UserID   int64     `db:"user_id"`
	BoardID  int64     `db:"board_id"`
	PostID   int64     `db:"post_id"`
	Side     int16     `db:"bet_side"`
	Stake    int64     `db:"bet_amount"`
	Profit   int64     `db:"profit"`
	Deadline time.Time `db:"deadline"`
}

type statRow struct {
	Period      time.Time `db:"period"`
	UserID      int64     `db:"user_id"`
	BoardID     int64     `db:"board_id"`
	TotalBets   int64     `db:"total_bets"`
	TotalAmount int64     `db:"total_amount"`
	TotalProfit int64     `db:"total_profit"`
	Wins        int64     `db:"wins"`
}

type rankingRow struct {
	UserID      int64  `db:"user_id"`
	Nickname    string `db:"nickname"`
	TotalBets   int64  `db:"total_bets"`
	TotalAmount int64  `db:"total_amount"`
	TotalProfit int64  `db:"total_profit"`
	Wins        int64  `db:"wins"`
}

type userRow struct {
	ID        int64     `db:"id"`
	Nickname  string    `db:"nickname"`
	CreatedAt time.Time `db:"created_at"`
}

type boardRow struct {
	ID        int64     `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type crawlRunInsertModel struct {
	RunID           string     `db:"run_id,key"`
	Trigger         string     `db:"trigger,keep"`
	Status          string     `db:"status"`
	Boards          string     `db:"boards"`
	Pages           int        `db:"pages"`
	PagesFetched    int        `db:"pages_fetched"`
	PostsSeen       int        `db:"posts_seen"`
	PostsIngested   int        `db:"posts_ingested"`
	PostsDuplicate  int        `db:"posts_duplicate"`
	PostsSkipped    int        `db:"posts_skipped"`
	RecordsInserted int        `db:"records_inserted"`
	LastError       *string    `db:"last_error"`
	StartedAt       time.Time  `db:"started_at,keep"`
	FinishedAt      *time.Time `db:"finished_at"`
}

type crawlRunRow struct {
	RunID           string         `db:"run_id"`
	Trigger         string         `db:"trigger"`
	Status          string         `db:"status"`
	Boards          []byte         `db:"boards"`
	Pages           int            `db:"pages"`
	PagesFetched    int            `db:"pages_fetched"`
	PostsSeen       int            `db:"posts_seen"`
	PostsIngested   int            `db:"posts_ingested"`
	PostsDuplicate  int            `db:"posts_duplicate"`
	PostsSkipped    int            `db:"posts_skipped"`
	RecordsInserted int            `db:"records_inserted"`
	LastError       sql.NullString `db:"last_error"`
	StartedAt       time.Time      `db:"started_at"`
	FinishedAt      sql.NullTime   `db:"finished_at"`
}
