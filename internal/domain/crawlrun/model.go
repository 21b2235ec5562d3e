package crawlrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Trigger string

const (
	TriggerAPI Trigger = "api"
	TriggerCLI Trigger = "cli"
)

// Run is the bookkeeping row of one crawl invocation.
type Run struct {
	ID              string
	Trigger         Trigger
	Status          Status
	Boards          []string
	Pages           int
	PagesFetched    int
	PostsSeen       int
	PostsIngested   int
	PostsDuplicate  int
	PostsSkipped    int
	RecordsInserted int
	LastError       string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

func (r Run) Finished() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
