package wager

import "time"

// Side is one of the two competing outcomes of a post.
type Side int16

const (
	SideFirst  Side = 0
	SideSecond Side = 1
)

func (s Side) Valid() bool {
	return s == SideFirst || s == SideSecond
}

// Row is one participant line extracted from a post page.
type Row struct {
	Nickname string
	Side     Side
	Stake    int64
	Payout   int64
}

func (r Row) Profit() int64 {
	return r.Payout - r.Stake
}

// Post is a closed betting post ready for ingestion.
type Post struct {
	BoardSlug string
	PostID    int64
	Deadline  time.Time
	Rows      []Row
}

// Batch groups the posts collected by one crawl step. Posts may span boards.
type Batch struct {
	Posts []Post
}

func (b Batch) Len() int {
	return len(b.Posts)
}

func (b Batch) RowCount() int {
	total := 0
	for _, post := range b.Posts {
		total += len(post.Rows)
	}
	return total
}

// Record is a fact row with resolved identities, as written to storage.
type Record struct {
	PostID   int64
	UserID   int64
	BoardID  int64
	Side     Side
	Stake    int64
	Payout   int64
	Deadline time.Time
}
