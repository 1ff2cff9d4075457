package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/api/models"
	"pv-sizing/internal/config"
	"pv-sizing/internal/data"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/log"
	"pv-sizing/internal/model"
	"pv-sizing/internal/report"
	"pv-sizing/internal/sizing"
	"pv-sizing/internal/store"

	"github.com/gin-gonic/gin"
)

var errUnsafePath = errors.New("data paths must be relative to the data directory")

// ProjectionHandler handles projection-related requests
type ProjectionHandler struct {
	store    *store.Store
	pvgis    *data.PVGISClient
	dataDir  string
	panelDir string
	engine   *sizing.Engine
}

// NewProjectionHandler creates a new projection handler. st and pvgis may be
// nil to disable persistence and PVGIS downloads.
func NewProjectionHandler(st *store.Store, pvgis *data.PVGISClient, dataDir, panelDir string) *ProjectionHandler {
	return &ProjectionHandler{
		store:    st,
		pvgis:    pvgis,
		dataDir:  dataDir,
		panelDir: panelDir,
		engine:   sizing.New(),
	}
}

// CreateProjection handles POST /api/v1/projections
func (h *ProjectionHandler) CreateProjection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cfg := req.Scenario
	in, err := h.prepare(c.Request.Context(), &cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	res, err := h.engine.Run(in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "PROJECTION_ERROR", err)
		return
	}

	resp := models.ProjectionResponse{
		Status:   "completed",
		Name:     req.Name,
		Panels:   in.Array.Count,
		Summary:  res.Summary(),
		Cashflow: res.Projection.Rows,
	}
	if req.Options.IncludeLedger {
		resp.Ledger = res.Ledger
	}

	persist := req.Options.Persist == nil || *req.Options.Persist
	if persist && h.store != nil {
		rec, err := h.store.Save(c.Request.Context(), store.NewRecord(req.Name, in.Array.Count, res))
		if err != nil {
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", err)
			return
		}
		resp.ID = rec.ID
		resp.CreatedAt = &rec.CreatedAt
	}

	log.Infow("projection completed",
		"id", resp.ID,
		"panels", resp.Panels,
		"savings", resp.Summary.Savings,
		"npv", resp.Summary.NPV)
	c.JSON(http.StatusOK, resp)
}

// ListProjections handles GET /api/v1/projections
func (h *ProjectionHandler) ListProjections(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", errStoreDisabled)
		return
	}
	limit := 50
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	resp := models.ProjectionListResponse{Projections: make([]models.ProjectionResponse, 0, len(recs))}
	for _, r := range recs {
		resp.Projections = append(resp.Projections, models.FromRecord(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProjection handles GET /api/v1/projections/:id
func (h *ProjectionHandler) GetProjection(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.FromRecord(rec))
}

// DeleteProjection handles DELETE /api/v1/projections/:id
func (h *ProjectionHandler) DeleteProjection(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", errStoreDisabled)
		return
	}
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCashflow handles GET /api/v1/projections/:id/cashflow.
// ?format=csv returns the table as CSV.
func (h *ProjectionHandler) GetCashflow(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ID+"-cashflow.csv"))
		c.Status(http.StatusOK)
		if err := sizing.EncodeCashflowCSV(c.Writer, &finance.Projection{Rows: rec.Cashflow}); err != nil {
			log.Warnf("cashflow csv for %s: %v", rec.ID, err)
		}
		return
	}
	c.JSON(http.StatusOK, models.CashflowResponse{ID: rec.ID, Cashflow: rec.Cashflow})
}

// GetChart handles GET /api/v1/projections/:id/chart?kind=daily|cashflow
func (h *ProjectionHandler) GetChart(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	png, err := report.Render(c.Query("kind"), rec.DailyLoad, rec.DailyProduction, rec.Cashflow)
	if err != nil {
		if errors.Is(err, report.ErrUnknownKind) {
			abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "CHART_ERROR", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// CompareProjections handles POST /api/v1/projections/compare
func (h *ProjectionHandler) CompareProjections(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cfg := req.Scenario
	base, err := h.prepare(c.Request.Context(), &cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	results := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, v := range req.Variations {
		in, err := applyVariation(&cfg, base, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_VARIATION", fmt.Errorf("variation %q: %w", v.Name, err))
			return
		}
		res, err := h.engine.Run(in)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "PROJECTION_ERROR", fmt.Errorf("variation %q: %w", v.Name, err))
			return
		}
		results = append(results, models.ComparisonResult{
			Name:    v.Name,
			Panels:  in.Array.Count,
			Summary: res.Summary(),
		})
	}
	c.JSON(http.StatusOK, models.CompareResponse{Comparison: results})
}

// SweepProjections handles POST /api/v1/projections/sweep
func (h *ProjectionHandler) SweepProjections(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	cfg := req.Scenario
	if cfg.Panels == 0 {
		cfg.Panels = req.Min
	}
	base, err := h.prepare(c.Request.Context(), &cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}
	points, err := analysis.Sweep(c.Request.Context(), base,
		analysis.Options{Min: req.Min, Max: req.Max, Step: req.Step},
		cfg.InitialInvestmentFor)
	if err != nil {
		respondError(c, http.StatusBadRequest, "SWEEP_ERROR", err)
		return
	}
	resp := models.SweepResponse{Points: points}
	if best, ok := analysis.Best(points); ok {
		resp.Best = &best
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectionHandler) lookup(c *gin.Context) (store.Record, bool) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", errStoreDisabled)
		return store.Record{}, false
	}
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return store.Record{}, false
	}
	return rec, true
}

// prepare confines the scenario's files to the data and panel directories,
// validates it and reads its inputs.
func (h *ProjectionHandler) prepare(ctx context.Context, cfg *config.Config) (sizing.Inputs, error) {
	if err := checkDataPaths(cfg.Load.Path, cfg.Irradiance.Path, cfg.Tariff.CurveFile); err != nil {
		return sizing.Inputs{}, err
	}
	if cfg.PanelFile != "" {
		name := filepath.Base(cfg.PanelFile)
		if !strings.HasSuffix(name, ".yaml") {
			name += ".yaml"
		}
		cfg.PanelFile = filepath.Join(h.panelDir, name)
		if err := cfg.ResolvePanel(); err != nil {
			return sizing.Inputs{}, fmt.Errorf("panel_file: %w", err)
		}
	}
	cfg.SetBaseDir(h.dataDir)
	if err := cfg.Validate(); err != nil {
		return sizing.Inputs{}, err
	}
	return cfg.ToInputs(ctx, h.pvgis)
}

// applyVariation derives the inputs of one variation from the base run.
func applyVariation(cfg *config.Config, base sizing.Inputs, v models.Variation) (sizing.Inputs, error) {
	in := base
	if v.Panels > 0 {
		in.Array.Count = v.Panels
		in.Finance.InitialInvestment = cfg.InitialInvestmentFor(v.Panels)
	}
	if v.Tariff != nil {
		if err := checkDataPaths(v.Tariff.CurveFile); err != nil {
			return sizing.Inputs{}, err
		}
		alt := *cfg
		alt.Tariff = *v.Tariff
		pricing, err := alt.Pricing()
		if err != nil {
			return sizing.Inputs{}, err
		}
		in.Pricing = pricing
	}
	if v.Battery != nil {
		bank := config.MergeBattery(model.DefaultBatteryBank(), *v.Battery)
		in.Battery = &bank
	}
	return in, nil
}

// checkDataPaths rejects absolute paths and paths climbing out of the data
// directory.
func checkDataPaths(paths ...string) error {
	for _, p := range paths {
		if p != "" && (filepath.IsAbs(p) || strings.Contains(p, "..")) {
			return fmt.Errorf("%q: %w", p, errUnsafePath)
		}
	}
	return nil
}
