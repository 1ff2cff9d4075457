package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the API process settings.
type Server struct {
	Port             string        `mapstructure:"api_port"`
	Env              string        `mapstructure:"api_env"`
	DataDir          string        `mapstructure:"data_dir"`
	PanelDir         string        `mapstructure:"panel_dir"`
	StorePath        string        `mapstructure:"store_path"`
	StaticDir        string        `mapstructure:"static_dir"`
	CORSOrigins      string        `mapstructure:"cors_origins"`
	PVGISBaseURL     string        `mapstructure:"pvgis_base_url"`
	EnablePVGIS      bool          `mapstructure:"enable_pvgis"`
	EnablePVGISCache bool          `mapstructure:"enable_pvgis_cache"`
	PVGISCacheTTL    time.Duration `mapstructure:"pvgis_cache_ttl"`
	Debug            bool          `mapstructure:"debug"`
}

func (s Server) IsProduction() bool { return s.Env == "production" }

// AllowedOrigins splits CORSOrigins on commas.
func (s Server) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LoadServer reads settings from defaults, an optional server.yaml in the
// working directory or ./config, and the environment (API_PORT, DATA_DIR, ...).
func LoadServer() (*Server, error) {
	v := viper.New()
	v.SetConfigName("server")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("api_port", "8080")
	v.SetDefault("api_env", "development")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("panel_dir", "./examples/panels")
	v.SetDefault("store_path", "./data/projections.db")
	v.SetDefault("static_dir", "")
	v.SetDefault("cors_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("pvgis_base_url", "")
	v.SetDefault("enable_pvgis", true)
	v.SetDefault("enable_pvgis_cache", false)
	v.SetDefault("pvgis_cache_ttl", 24*time.Hour)
	v.SetDefault("debug", false)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var s Server
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
