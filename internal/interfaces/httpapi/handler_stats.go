package httpapi

import (
	"net/http"

	"github.com/riskibarqy/wato-stats/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

func (h *Handler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDailyStats",
		attribute.String("stats.nickname", queryValue(query, "nickname")),
		attribute.String("stats.board", queryValue(query, "boardSlug")),
	)
	defer span.End()

	req := dailyStatsRequest{
		Nickname:  queryValue(query, "nickname"),
		BoardSlug: queryValue(query, "boardSlug"),
		StartDate: queryValue(query, "startDate"),
		EndDate:   queryValue(query, "endDate"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.statsService.DailyStats(ctx, usecase.DailyStatsQuery{
		Nickname:  req.Nickname,
		BoardSlug: req.BoardSlug,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get daily stats failed", "nickname", req.Nickname, "board_slug", req.BoardSlug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMonthlyStats",
		attribute.String("stats.nickname", queryValue(query, "nickname")),
		attribute.String("stats.board", queryValue(query, "boardSlug")),
	)
	defer span.End()

	req := monthlyStatsRequest{
		Nickname:   queryValue(query, "nickname"),
		BoardSlug:  queryValue(query, "boardSlug"),
		StartMonth: queryValue(query, "startMonth"),
		EndMonth:   queryValue(query, "endMonth"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.statsService.MonthlyStats(ctx, usecase.MonthlyStatsQuery{
		Nickname:   req.Nickname,
		BoardSlug:  req.BoardSlug,
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get monthly stats failed", "nickname", req.Nickname, "board_slug", req.BoardSlug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) GetDailyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDailyRanking",
		attribute.String("stats.period", r.URL.Query().Get("statDate")),
		attribute.String("stats.board", r.URL.Query().Get("boardSlug")),
	)
	defer span.End()

	req, err := h.decodeRankingRequest(r, "statDate")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ranking, err := h.statsService.DailyRanking(ctx, usecase.RankingQuery(req))
	if err != nil {
		h.logger.WarnContext(ctx, "get daily ranking failed", "stat_date", req.Period, "board_slug", req.BoardSlug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ranking)
}

func (h *Handler) GetMonthlyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMonthlyRanking",
		attribute.String("stats.period", r.URL.Query().Get("statMonth")),
		attribute.String("stats.board", r.URL.Query().Get("boardSlug")),
	)
	defer span.End()

	req, err := h.decodeRankingRequest(r, "statMonth")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ranking, err := h.statsService.MonthlyRanking(ctx, usecase.RankingQuery(req))
	if err != nil {
		h.logger.WarnContext(ctx, "get monthly ranking failed", "stat_month", req.Period, "board_slug", req.BoardSlug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ranking)
}

func (h *Handler) decodeRankingRequest(r *http.Request, periodKey string) (rankingRequest, error) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query, "limit")
	if err != nil {
		return rankingRequest{}, err
	}

	req := rankingRequest{
		Period:    queryValue(query, periodKey),
		BoardSlug: queryValue(query, "boardSlug"),
		Limit:     limit,
	}
	if err := h.validateRequest(r.Context(), req); err != nil {
		return rankingRequest{}, err
	}
	return req, nil
}
