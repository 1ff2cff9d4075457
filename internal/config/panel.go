package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pv-sizing/internal/production"

	"gopkg.in/yaml.v3"
)

// PanelPreset is one datasheet file from the panel directory.
type PanelPreset struct {
	ID    string      `json:"id"`
	File  string      `json:"file"`
	Panel PanelConfig `json:"panel"`
}

type panelFileWrapper struct {
	Panel PanelConfig `yaml:"panel"`
}

func LoadPanelFile(path string) (PanelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PanelConfig{}, err
	}
	var w panelFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return PanelConfig{}, err
	}
	return w.Panel, nil
}

// ListPanelFiles reads every *.yaml preset in dir, sorted by ID.
// Unreadable files are skipped.
func ListPanelFiles(dir string) ([]PanelPreset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []PanelPreset{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := LoadPanelFile(path)
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".yaml")
		if p.Name == "" {
			p.Name = id
		}
		out = append(out, PanelPreset{ID: id, File: path, Panel: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MergePanel overlays non-zero fields from override onto base.
// Gamma 0 cannot override a preset; use a preset with gamma 0 instead.
func MergePanel(base, override PanelConfig) PanelConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.PeakPowerW != 0 {
		out.PeakPowerW = override.PeakPowerW
	}
	if override.TNOCT != 0 {
		out.TNOCT = override.TNOCT
	}
	if override.Gamma != 0 {
		out.Gamma = override.Gamma
	}
	return out
}

func (p PanelConfig) ToModel() production.Panel {
	return production.Panel{Name: p.Name, PeakPowerW: p.PeakPowerW, TNOCT: p.TNOCT, Gamma: p.Gamma}
}
