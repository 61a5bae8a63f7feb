package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/handler/dto"
	"github.com/mtlprog/farmops/internal/report"
)

// handleEfficiencyReport returns the windowed efficiency of workers, leaders or teams.
// @Summary Efficiency report
// @Description Accepted, terminated and failed task counts per subject for the given dates, ordered by subject id
// @Tags reports
// @Produce json
// @Param kind path string true "Subject kind: workers, leaders, teams"
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD (inclusive)"
// @Param filter query string false "Case-insensitive name substring, or all"
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Success 200 {object} dto.PageResponse[dto.WorkerEfficiency]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /reports/efficiency/{kind} [get]
func (h *Handler) handleEfficiencyReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind := r.PathValue("kind")
	if kind != report.KindWorkers && kind != report.KindLeaders && kind != report.KindTeams {
		respondError(w, http.StatusNotFound, "REPORT_NOT_FOUND", "report must be one of: workers, leaders, teams")
		return
	}

	window, query, err := h.parseReportQuery(r, "filter")
	if err != nil {
		respondDomainError(w, err)
		return
	}
	req := report.PageRequest{Index: query.Page, Size: query.Size}

	switch kind {
	case report.KindWorkers:
		page, err := h.reports.ReportWorkers(ctx, window, query.Filter, req)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.ToPageResponse(page, dto.ToWorkerEfficiency))

	case report.KindLeaders:
		page, err := h.reports.ReportLeaders(ctx, window, query.Filter, req)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.ToPageResponse(page, dto.ToLeaderEfficiency))

	case report.KindTeams:
		page, err := h.reports.ReportTeams(ctx, window, query.Filter, req)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.ToPageResponse(page, dto.ToTeamEfficiency))
	}
}

// handleResourceUsageReport returns net resource usage of accepted tasks.
// @Summary Resource usage report
// @Description Net usage per resource for accepted tasks, compared with the previous period of equal length
// @Tags reports
// @Produce json
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD (inclusive)"
// @Param resource query string false "Case-insensitive resource name substring, or all"
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Success 200 {object} dto.PageResponse[dto.ResourceUsage]
// @Failure 400 {object} dto.ErrorResponse
// @Router /reports/resource-usage [get]
func (h *Handler) handleResourceUsageReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, query, err := h.parseReportQuery(r, "resource")
	if err != nil {
		respondDomainError(w, err)
		return
	}

	page, err := h.reports.ReportResourceUsage(ctx, window, query.Filter, report.PageRequest{
		Index: query.Page,
		Size:  query.Size,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToPageResponse(page, dto.ToResourceUsage))
}

// parseReportQuery reads from, to, the named filter parameter, page and size.
// A missing size uses the default; a size above the maximum is capped.
func (h *Handler) parseReportQuery(r *http.Request, filterParam string) (domain.Window, dto.ReportQuery, error) {
	values := r.URL.Query()
	query := dto.ReportQuery{
		From:   values.Get("from"),
		To:     values.Get("to"),
		Filter: values.Get(filterParam),
		Size:   h.paging.DefaultSize,
	}

	window, err := report.ParseDayWindow(query.From, query.To)
	if err != nil {
		return domain.Window{}, query, err
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return domain.Window{}, query, fmt.Errorf("%w: page must be a non-negative integer, got %q", domain.ErrInvalidPage, raw)
		}
		query.Page = page
	}

	if raw := values.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return domain.Window{}, query, fmt.Errorf("%w: size must be a positive integer, got %q", domain.ErrInvalidPage, raw)
		}
		query.Size = min(size, h.paging.MaxSize)
	}

	return window, query, nil
}
