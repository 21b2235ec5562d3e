package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
)

type CrawlRunRepository struct {
	mu    sync.RWMutex
	items map[string]crawlrun.Run
}

func NewCrawlRunRepository() *CrawlRunRepository {
	return &CrawlRunRepository{items: make(map[string]crawlrun.Run)}
}

func (r *CrawlRunRepository) Upsert(_ context.Context, run crawlrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.Boards = append([]string(nil), run.Boards...)
	if run.FinishedAt != nil {
		finishedAt := *run.FinishedAt
		run.FinishedAt = &finishedAt
	}
	r.items[run.ID] = run
	return nil
}

func (r *CrawlRunRepository) GetByID(_ context.Context, runID string) (crawlrun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.items[runID]
	return run, ok, nil
}
