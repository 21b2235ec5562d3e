package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

const maxCrawlTriggerBody = 64 << 10

func (h *Handler) TriggerCrawl(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerCrawl")
	defer span.End()

	if h.crawlTrigger == nil {
		writeError(ctx, w, fmt.Errorf("%w: crawl trigger is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeCrawlTriggerRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	runID, err := h.crawlTrigger.Start(ctx, usecase.CrawlInput{
		Boards:  req.Boards,
		Pages:   req.Pages,
		Trigger: crawlrun.TriggerAPI,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "trigger crawl failed", "boards", req.Boards, "pages", req.Pages, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "crawl run triggered", "run_id", runID, "boards", req.Boards, "pages", req.Pages)
	writeSuccess(ctx, w, http.StatusAccepted, crawlTriggerDTO{RunID: runID, Status: "started"})
}

func (h *Handler) GetCrawlRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.PathValue("runID"))
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCrawlRun", attribute.String("crawl.run_id", runID))
	defer span.End()

	if h.crawlService == nil {
		writeError(ctx, w, fmt.Errorf("%w: crawl service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	run, err := h.crawlService.GetRun(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get crawl run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, crawlRunToDTO(ctx, run))
}

func decodeCrawlTriggerRequest(r *http.Request) (crawlTriggerRequest, error) {
	if r.Body == nil {
		return crawlTriggerRequest{}, nil
	}

	decoder := sonic.ConfigStd.NewDecoder(io.LimitReader(r.Body, maxCrawlTriggerBody))
	decoder.DisallowUnknownFields()

	var req crawlTriggerRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return crawlTriggerRequest{}, nil
		}
		return crawlTriggerRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
