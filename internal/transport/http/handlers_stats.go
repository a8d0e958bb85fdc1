package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mayaportal/internal/platform/middleware"
	"mayaportal/internal/stats/models"
	dErrors "mayaportal/pkg/domain-errors"
	"mayaportal/pkg/platform/httputil"
)

// DefaultWindowDays is the aggregation window used when the request does not
// name one.
const DefaultWindowDays = 30

// StatsService defines the interface for report operations.
type StatsService interface {
	ResolveKey(kind string, days int) (models.ReportKey, error)
	Report(ctx context.Context, key models.ReportKey) (*models.Snapshot, error)
	Refresh(ctx context.Context, key models.ReportKey) (*models.Snapshot, error)
}

// StatsHandler handles the per-kind report endpoints.
type StatsHandler struct {
	stats  StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler with the given service and logger.
func NewStatsHandler(stats StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// Register registers the report routes with the chi router.
// The parent router applies the session middleware; these handlers assume an
// authenticated request.
func (h *StatsHandler) Register(r chi.Router) {
	r.Get("/{kind}/stats", h.HandleStats)
	r.Post("/{kind}/sync", h.HandleSync)
}

type statsResponse struct {
	OK           bool                   `json:"ok"`
	Kind         string                 `json:"kind"`
	WindowDays   int                    `json:"window_days"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Summary      map[string]int64       `json:"summary"`
	ByFormat     []models.CategoryCount `json:"by_format"`
	ByEventType  []models.CategoryCount `json:"by_event_type"`
	TopCountries []models.CategoryCount `json:"top_countries"`
	Rows         []models.SubjectRow    `json:"rows"`
}

// HandleStats implements GET /api/{kind}/stats?days=N.
// Serves the cached snapshot; only a never-computed report pays for a scan.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.stats.Report)
}

// HandleSync implements POST /api/{kind}/sync?days=N.
// Forces a refresh and returns the fresh snapshot. Concurrent syncs of the
// same report share one scan.
func (h *StatsHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.stats.Refresh)
}

func (h *StatsHandler) serve(w http.ResponseWriter, r *http.Request, fetch func(context.Context, models.ReportKey) (*models.Snapshot, error)) {
	ctx := r.Context()

	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	key, err := h.stats.ResolveKey(chi.URLParam(r, "kind"), days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := fetch(ctx, key)
	if err != nil {
		h.logger.ErrorContext(ctx, "report request failed",
			"error", err,
			"report_key", key.String(),
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, statsResponse{
		OK:           true,
		Kind:         snap.Key.Kind,
		WindowDays:   snap.Key.WindowDays,
		GeneratedAt:  snap.GeneratedAt,
		Summary:      snap.Summary,
		ByFormat:     snap.ByFormat,
		ByEventType:  snap.ByEventType,
		TopCountries: snap.TopCountries,
		Rows:         snap.Rows,
	})
}

// parseDays interprets the days query parameter. Absent means the default
// window; anything that is not a positive integer is invalid_input.
func parseDays(raw string) (int, error) {
	if raw == "" {
		return DefaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "days must be an integer")
	}
	return days, nil
}
