package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
)

type RecomputeResult struct {
	Facts       int `json:"facts"`
	DailyRows   int `json:"daily_rows"`
	MonthlyRows int `json:"monthly_rows"`
}

// AggregationService rebuilds the daily and monthly tables from the full
// fact history. Running it twice over the same facts writes identical rows.
type AggregationService struct {
	clock  bettingstats.DayClock
	logger *logging.Logger
}

func NewAggregationService(clock bettingstats.DayClock, logger *logging.Logger) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AggregationService{clock: clock, logger: logger}
}

func (s *AggregationService) Clock() bettingstats.DayClock {
	return s.clock
}

func (s *AggregationService) Recompute(ctx context.Context, tx bettingstats.RecomputeTx) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.Recompute")
	defer span.End()

	facts, err := tx.ListFacts(ctx)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list facts: %w", err)
	}

	daily, monthly := bettingstats.Aggregate(facts, s.clock)
	if err := tx.ReplaceDailyStats(ctx, daily); err != nil {
		return RecomputeResult{}, fmt.Errorf("replace daily stats: %w", err)
	}
	if err := tx.ReplaceMonthlyStats(ctx, monthly); err != nil {
		return RecomputeResult{}, fmt.Errorf("replace monthly stats: %w", err)
	}

	s.logger.DebugContext(ctx, "betting stats recomputed", "facts", len(facts), "daily_rows", len(daily), "monthly_rows", len(monthly))
	return RecomputeResult{
		Facts:       len(facts),
		DailyRows:   len(daily),
		MonthlyRows: len(monthly),
	}, nil
}
