package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed headforms.yaml
var headformsYAML []byte

//go:embed catalog.yaml
var catalogYAML []byte

type Config struct {
	Measurement MeasurementConfig
	Database    DatabaseConfig
	Log         LogConfig
	Web         WebConfig
	Headforms   HeadformsConfig
	Catalog     CatalogConfig
}

type MeasurementConfig struct {
	MMPerPixel         float64 // calibration for landmark distances (default 140/180)
	MentonSellionRatio float64 // headform menton-sellion share of face length (default 0.7)
	SimplifyTarget     int     // default target vertex count for mesh simplification
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (optional, storage disabled when empty)
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

type LogConfig struct {
	Level string // logrus level name (default info)
	File  string // optional rotating log file path
}

type WebConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string // extra CORS origins besides localhost
}

// HeadformsConfig is the ordered face-size profile table.
type HeadformsConfig struct {
	Profiles []HeadformProfileConfig `yaml:"profiles"`
}

type HeadformProfileConfig struct {
	Name               string     `yaml:"name"`
	Description        string     `yaml:"description"`
	Population         string     `yaml:"population"`
	BizygomaticBreadth [2]float64 `yaml:"bizygomatic_breadth"`
	MentonSellion      [2]float64 `yaml:"menton_sellion"`
}

// CatalogConfig maps a category to its curated candidate list.
type CatalogConfig struct {
	Categories map[string][]CandidateConfig `yaml:"categories"`
}

type CandidateConfig struct {
	Brand    string `yaml:"brand"`
	Model    string `yaml:"model"`
	Size     string `yaml:"size"`
	FitScore int    `yaml:"fit_score"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive finite float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return defaultVal
	}
	return f
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Load reads the configuration from the environment. The profile table and the
// catalog come from the embedded YAML unless HEADFORM_PROFILES_PATH or
// CATALOG_PATH point at replacement files.
func Load() (*Config, error) {
	headforms, err := loadHeadforms(os.Getenv("HEADFORM_PROFILES_PATH"))
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(os.Getenv("CATALOG_PATH"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Measurement: MeasurementConfig{
			MMPerPixel:         envFloat("CALIBRATION_MM_PER_PIXEL", 140.0/180.0),
			MentonSellionRatio: envFloat("MENTON_SELLION_RATIO", 0.7),
			SimplifyTarget:     envInt("SIMPLIFY_TARGET_VERTICES", 10000),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Web: WebConfig{
			Port: envInt("WEB_PORT", 8080),
			Host: envString("WEB_HOST", "0.0.0.0"),

			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Headforms: headforms,
		Catalog:   catalog,
	}, nil
}

func readOverride(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func loadHeadforms(path string) (HeadformsConfig, error) {
	data, err := readOverride(path, headformsYAML)
	if err != nil {
		return HeadformsConfig{}, err
	}
	var cfg HeadformsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HeadformsConfig{}, fmt.Errorf("parsing headform profiles: %w", err)
	}
	if len(cfg.Profiles) == 0 {
		return HeadformsConfig{}, fmt.Errorf("headform profile table is empty")
	}
	return cfg, nil
}

func loadCatalog(path string) (CatalogConfig, error) {
	data, err := readOverride(path, catalogYAML)
	if err != nil {
		return CatalogConfig{}, err
	}
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CatalogConfig{}, fmt.Errorf("parsing catalog: %w", err)
	}
	return cfg, nil
}
