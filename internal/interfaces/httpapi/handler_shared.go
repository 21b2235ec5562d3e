package httpapi

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/usecase"
)

var boardSlugRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return boardSlugRegex.MatchString(fl.Field().String())
	})
	return v
}

type dailyStatsRequest struct {
	Nickname  string `validate:"required,max=64"`
	BoardSlug string `validate:"omitempty,slug"`
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

type monthlyStatsRequest struct {
	Nickname   string `validate:"required,max=64"`
	BoardSlug  string `validate:"omitempty,slug"`
	StartMonth string `validate:"omitempty,datetime=2006-01"`
	EndMonth   string `validate:"omitempty,datetime=2006-01"`
}

type rankingRequest struct {
	Period    string
	BoardSlug string `validate:"omitempty,slug"`
	Limit     int    `validate:"gte=0"`
}

type crawlTriggerRequest struct {
	Boards []string `json:"boards" validate:"omitempty,max=20,dive,slug"`
	Pages  int      `json:"pages" validate:"gte=0,lte=100"`
}

type crawlTriggerDTO struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type crawlRunDTO struct {
	RunID           string   `json:"run_id"`
	Trigger         string   `json:"trigger"`
	Status          string   `json:"status"`
	Boards          []string `json:"boards"`
	Pages           int      `json:"pages"`
	PagesFetched    int      `json:"pages_fetched"`
	PostsSeen       int      `json:"posts_seen"`
	PostsIngested   int      `json:"posts_ingested"`
	PostsDuplicate  int      `json:"posts_duplicate"`
	PostsSkipped    int      `json:"posts_skipped"`
	RecordsInserted int      `json:"records_inserted"`
	LastError       string   `json:"last_error,omitempty"`
	StartedAt       string   `json:"started_at"`
	FinishedAt      string   `json:"finished_at,omitempty"`
}

func crawlRunToDTO(ctx context.Context, run crawlrun.Run) crawlRunDTO {
	_, span := startSpan(ctx, "httpapi.crawlRunToDTO")
	defer span.End()

	boards := run.Boards
	if boards == nil {
		boards = []string{}
	}
	return crawlRunDTO{
		RunID:           run.ID,
		Trigger:         string(run.Trigger),
		Status:          string(run.Status),
		Boards:          boards,
		Pages:           run.Pages,
		PagesFetched:    run.PagesFetched,
		PostsSeen:       run.PostsSeen,
		PostsIngested:   run.PostsIngested,
		PostsDuplicate:  run.PostsDuplicate,
		PostsSkipped:    run.PostsSkipped,
		RecordsInserted: run.RecordsInserted,
		LastError:       run.LastError,
		StartedAt:       run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:      formatOptionalTime(run.FinishedAt),
	}
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func queryValue(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func parseOptionalInt(values url.Values, key string) (int, error) {
	raw := queryValue(values, key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}
