package wager

import (
	"strings"
	"time"
)

// ParsedPost is what a post page yields before the skip/record decision.
type ParsedPost struct {
	BoardSlug   string
	PostID      int64
	IsBetting   bool
	IsClosed    bool
	Deadline    *time.Time
	Rows        []Row
	SkippedRows int
}

type OutcomeKind string

const (
	OutcomeIngestible      OutcomeKind = "ingestible"
	OutcomeSkipRetryLater  OutcomeKind = "skip_retry_later"
	OutcomeSkipPermanently OutcomeKind = "skip_permanently"
)

const (
	ReasonNotBettingPost = "not a betting post"
	ReasonStillOpen      = "betting still open"
	ReasonNoDeadline     = "deadline missing"
	ReasonNoRows         = "no participant rows"
	ReasonInvalidPostID  = "invalid post id"
)

// Outcome is the tagged result of Decide. Post is set only for OutcomeIngestible.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Post   Post
}

func (o Outcome) Ingestible() bool {
	return o.Kind == OutcomeIngestible
}

func Ingestible(post Post) Outcome {
	return Outcome{Kind: OutcomeIngestible, Post: post}
}

func SkipRetryLater(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipRetryLater, Reason: reason}
}

func SkipPermanently(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipPermanently, Reason: reason}
}

// Decide turns a parsed page into an ingestion outcome. Posts skipped with
// OutcomeSkipRetryLater are never marked as seen, so a later crawl retries them.
func Decide(parsed ParsedPost) Outcome {
	if parsed.PostID <= 0 {
		return SkipPermanently(ReasonInvalidPostID)
	}
	if !parsed.IsBetting {
		return SkipPermanently(ReasonNotBettingPost)
	}
	if !parsed.IsClosed {
		return SkipRetryLater(ReasonStillOpen)
	}
	if parsed.Deadline == nil || parsed.Deadline.IsZero() {
		return SkipRetryLater(ReasonNoDeadline)
	}

	rows := make([]Row, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		row.Nickname = strings.TrimSpace(row.Nickname)
		if row.Nickname == "" || !row.Side.Valid() || row.Stake <= 0 || row.Payout < 0 {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return SkipRetryLater(ReasonNoRows)
	}

	return Ingestible(Post{
		BoardSlug: parsed.BoardSlug,
		PostID:    parsed.PostID,
		Deadline:  parsed.Deadline.UTC(),
		Rows:      rows,
	})
}
