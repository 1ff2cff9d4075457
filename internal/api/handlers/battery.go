package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"pv-sizing/internal/api/models"
	"pv-sizing/internal/battery"
	"pv-sizing/internal/config"
	"pv-sizing/internal/log"
	"pv-sizing/internal/model"

	"github.com/gin-gonic/gin"
)

// BatteryHandler handles battery sizing requests
type BatteryHandler struct{}

func NewBatteryHandler() *BatteryHandler {
	return &BatteryHandler{}
}

// SizeBattery handles POST /api/v1/battery/sizing
func (h *BatteryHandler) SizeBattery(c *gin.Context) {
	var req models.BatterySizingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dailyWh := req.DailyLoadWh
	if len(req.HourlyLoad) > 0 {
		wh, err := battery.DailyLoadWh(req.HourlyLoad)
		if err != nil {
			abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		dailyWh = wh
	}
	if dailyWh <= 0 {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "daily_load_wh or hourly_load_kwh is required")
		return
	}

	bank := model.DefaultBatteryBank()
	if req.Bank != nil {
		bank = config.MergeBattery(bank, *req.Bank)
	}
	s, err := battery.Size(dailyWh, bank)
	if err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_BATTERY", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.BatterySizingResponse{
		Bank: models.BankSpecs{
			InverterEfficiency:    bank.InverterEfficiency,
			BatteryVoltage:        bank.BatteryVoltage,
			NominalVoltage:        bank.NominalVoltage,
			AhRating:              bank.AhRating,
			DaysOfAutonomy:        bank.DaysOfAutonomy,
			DepthOfDischarge:      bank.DepthOfDischarge,
			AmbientTempMultiplier: bank.AmbientTempMultiplier,
		},
		Sizing: s,
	})
}

// PanelHandler serves the panel datasheet presets
type PanelHandler struct {
	panelDir string
}

// NewPanelHandler creates a panel handler reading presets from dir.
func NewPanelHandler(dir string) *PanelHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Infof("PanelHandler: using panel directory %s", dir)
	return &PanelHandler{panelDir: dir}
}

// ListPanels handles GET /api/v1/panels
func (h *PanelHandler) ListPanels(c *gin.Context) {
	presets, err := config.ListPanelFiles(h.panelDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("PanelHandler: directory does not exist: %s", h.panelDir)
		} else {
			log.Warnf("PanelHandler: failed to read %s: %v", h.panelDir, err)
		}
		presets = []config.PanelPreset{}
	}
	c.JSON(http.StatusOK, models.PanelListResponse{Panels: presets})
}
