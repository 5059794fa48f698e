package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"cloud.google.com/go/civil"
	"github.com/deliverable/cityinsights/internal/cache"
	"github.com/deliverable/cityinsights/internal/dashboard"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// DashboardService is what the handlers need from the dashboard pipeline.
type DashboardService interface {
	Build(ctx context.Context, req dashboard.Request) (*dashboard.View, error)
	Dataset(ctx context.Context, name string, req dashboard.Request) (*dashboard.View, error)
	Invalidate() int
	CacheStats() cache.Stats
}

type DashboardHandler struct {
	service DashboardService
	logger  *slog.Logger
}

func NewDashboardHandler(s DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: s,
		logger:  logger.With("component", "dashboard_handler"),
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo, g *echo.Group) {
	e.GET("/", h.HandleIndex)
	e.GET("/charts", h.HandleCharts)

	g.GET("/dashboard", h.HandleGetDashboard)
	g.GET("/datasets/:name", h.HandleGetDataset)
	g.GET("/cache", h.HandleGetCacheStats)
	g.POST("/cache/invalidate", h.HandleInvalidateCache)
}

// indexPage is the data for templates/index.html.
type indexPage struct {
	PageTitle string
	View      *dashboard.View
	ChartsURL string
}

// HandleIndex renders the sidebar with the date inputs and advisory next to
// the chart frame.
func (h *DashboardHandler) HandleIndex(c echo.Context) error {
	ctx := c.Request().Context()
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	view, err := h.service.Build(ctx, req)
	if err != nil {
		return h.loadFailed(c, err)
	}

	q := url.Values{}
	q.Set("start", view.Range.Start.String())
	q.Set("end", view.Range.End.String())

	return c.Render(http.StatusOK, "index.html", indexPage{
		PageTitle: "City insights 2022",
		View:      view,
		ChartsURL: "/charts?" + q.Encode(),
	})
}

// HandleCharts renders both line charts as a standalone page.
func (h *DashboardHandler) HandleCharts(c echo.Context) error {
	ctx := c.Request().Context()
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	view, err := h.service.Build(ctx, req)
	if err != nil {
		return h.loadFailed(c, err)
	}

	var buf bytes.Buffer
	if err := buildChartPage(view).Render(&buf); err != nil {
		h.logger.ErrorContext(ctx, "Failed to render charts", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render charts").SetInternal(err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleGetDashboard returns the full view as JSON.
func (h *DashboardHandler) HandleGetDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	view, err := h.service.Build(ctx, req)
	if err != nil {
		return h.loadFailed(c, err)
	}

	if !view.Advisory.OK() {
		h.logger.InfoContext(ctx, "Date range outside data bounds", "range", view.Range.String(), "bounds", view.Bounds.String(), "advisory", view.Advisory.Message)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleGetDataset returns a single chart's table as JSON.
func (h *DashboardHandler) HandleGetDataset(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	view, err := h.service.Dataset(ctx, name, req)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownDataset) {
			h.logger.WarnContext(ctx, "Requested unknown dataset", "dataset", name)
			return echo.NewHTTPError(http.StatusNotFound, "Unknown dataset '"+name+"'")
		}
		return h.loadFailed(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) HandleGetCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.CacheStats())
}

// HandleInvalidateCache drops every memoized query result so the next
// request reads fresh data.
func (h *DashboardHandler) HandleInvalidateCache(c echo.Context) error {
	n := h.service.Invalidate()
	h.logger.InfoContext(c.Request().Context(), "Query cache invalidated", "entries", n, "ip", c.RealIP())
	return c.JSON(http.StatusOK, map[string]int{"invalidated": n})
}

// loadFailed reports a data-load failure. There is no degraded mode, so the
// request fails.
func (h *DashboardHandler) loadFailed(c echo.Context, err error) error {
	ctx := c.Request().Context()
	h.logger.ErrorContext(ctx, "Failed to load dashboard data", "error", err, "request_id", c.Get("requestID"))

	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard data").SetInternal(err)
}

func parseRequest(c echo.Context) (dashboard.Request, error) {
	start, err := parseDateParam(c, "start")
	if err != nil {
		return dashboard.Request{}, err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return dashboard.Request{}, err
	}
	return dashboard.Request{Start: start, End: end}, nil
}

func parseDateParam(c echo.Context, name string) (*civil.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Query parameter '%s' must be a YYYY-MM-DD date", name))
	}
	return &d, nil
}
