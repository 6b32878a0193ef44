package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/occfilter/internal/domain/geo"
)

// Config holds the occfilter run configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	RangeMap RangeMapConfig `yaml:"rangemap"`
	Filters  FiltersConfig  `yaml:"filters"`
	Index    IndexConfig    `yaml:"index"`
	Run      RunConfig      `yaml:"run"`
	Cache    CacheConfig    `yaml:"cache"`
	Status   StatusConfig   `yaml:"status"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// DataConfig locates occurrence and distribution inputs.
type DataConfig struct {
	BaseDir            string         `yaml:"base_dir"`
	SpeciesList        string         `yaml:"species_list"`
	Sources            []SourceConfig `yaml:"sources"`
	DistributionSuffix string         `yaml:"distribution_suffix"`
}

// SourceConfig describes one occurrence data source.
type SourceConfig struct {
	Name      string   `yaml:"name"`   // gbif, idigbio
	Format    string   `yaml:"format"` // delimited (default), parquet
	Suffix    string   `yaml:"suffix"`
	DenyFlags []string `yaml:"deny_flags"`
}

// RangeMapConfig locates the WGSRPD shapefile layers.
type RangeMapConfig struct {
	LayerDir      string `yaml:"layer_dir"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

// FiltersConfig holds point filter settings.
type FiltersConfig struct {
	BoundingBox []float64 `yaml:"bounding_box"` // [min_x, min_y, max_x, max_y]
	MinPoints   int       `yaml:"min_points"`
	DedupScope  string    `yaml:"dedup_scope"` // species (default), run
}

// IndexConfig holds quadtree decomposition settings.
type IndexConfig struct {
	MinCellArea float64 `yaml:"min_cell_area"`
	MaxDepth    *int    `yaml:"max_depth"`
	GapPolicy   string  `yaml:"gap_policy"` // partial (default), drop
}

// RunConfig holds orchestration settings.
type RunConfig struct {
	Concurrency int    `yaml:"concurrency"`
	LogEvery    int    `yaml:"log_every"`
	Output      string `yaml:"output"`  // "-" or empty for stdout
	Summary     string `yaml:"summary"` // JSON summary path; empty prints text to stderr
	Report      string `yaml:"report"`  // per-species report path; empty disables
}

// CacheConfig holds the range-map geometry cache backend settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none (default), redis, valkey
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StatusConfig holds the status HTTP server settings.
type StatusConfig struct {
	Port        int      `yaml:"port"` // 0 disables the server
	APIKeys     []string `yaml:"api_keys"`
	ShutdownSec int      `yaml:"shutdown_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Data.DistributionSuffix == "" {
		c.Data.DistributionSuffix = "_powo.json"
	}
	for i := range c.Data.Sources {
		s := &c.Data.Sources[i]
		if s.Format == "" {
			s.Format = "delimited"
		}
		if s.Suffix == "" {
			s.Suffix = defaultSuffix(s.Name, s.Format)
		}
	}
	if c.RangeMap.CacheTTLHours <= 0 {
		c.RangeMap.CacheTTLHours = 168
	}
	if len(c.Filters.BoundingBox) == 0 {
		w := geo.World
		c.Filters.BoundingBox = []float64{w.MinX, w.MinY, w.MaxX, w.MaxY}
	}
	if c.Filters.DedupScope == "" {
		c.Filters.DedupScope = "species"
	}
	if c.Index.MinCellArea <= 0 {
		c.Index.MinCellArea = 0.01
	}
	if c.Index.MaxDepth == nil {
		d := 10
		c.Index.MaxDepth = &d
	}
	if c.Index.GapPolicy == "" {
		c.Index.GapPolicy = "partial"
	}
	if c.Run.Concurrency <= 0 {
		c.Run.Concurrency = 7
	}
	if c.Run.LogEvery <= 0 {
		c.Run.LogEvery = 1000
	}
	if c.Run.Output == "" {
		c.Run.Output = "-"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "occfilter:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Status.ShutdownSec <= 0 {
		c.Status.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Data.BaseDir == "" {
		return fmt.Errorf("data.base_dir is required")
	}
	if len(c.Data.Sources) == 0 {
		return fmt.Errorf("data.sources must list at least one source")
	}
	seen := make(map[string]struct{}, len(c.Data.Sources))
	for i, s := range c.Data.Sources {
		if s.Name == "" {
			return fmt.Errorf("data.sources[%d].name is required", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("data.sources[%d].name %q is duplicated", i, s.Name)
		}
		seen[s.Name] = struct{}{}
		switch s.Format {
		case "delimited", "parquet":
		default:
			return fmt.Errorf("data.sources.%s.format must be \"delimited\" or \"parquet\", got %q", s.Name, s.Format)
		}
	}

	bb := c.Filters.BoundingBox
	if len(bb) != 4 {
		return fmt.Errorf("filters.bounding_box must have 4 values, got %d", len(bb))
	}
	if bb[0] >= bb[2] || bb[1] >= bb[3] {
		return fmt.Errorf("filters.bounding_box min must be below max, got %v", bb)
	}
	if c.Filters.MinPoints < 0 {
		return fmt.Errorf("filters.min_points must be >= 0, got %d", c.Filters.MinPoints)
	}
	switch c.Filters.DedupScope {
	case "species", "run":
	default:
		return fmt.Errorf("filters.dedup_scope must be \"species\" or \"run\", got %q", c.Filters.DedupScope)
	}

	if c.Index.MaxDepth != nil && *c.Index.MaxDepth < 0 {
		return fmt.Errorf("index.max_depth must be >= 0, got %d", *c.Index.MaxDepth)
	}
	switch c.Index.GapPolicy {
	case "partial", "drop":
	default:
		return fmt.Errorf("index.gap_policy must be \"partial\" or \"drop\", got %q", c.Index.GapPolicy)
	}

	if c.Run.Concurrency < 1 {
		return fmt.Errorf("run.concurrency must be >= 1, got %d", c.Run.Concurrency)
	}

	switch c.Cache.Driver {
	case "none":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}

	if c.Status.Port < 0 || c.Status.Port > 65535 {
		return fmt.Errorf("status.port must be between 0 and 65535, got %d", c.Status.Port)
	}
	return nil
}

// CacheTTL returns the range-map cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.RangeMap.CacheTTLHours) * time.Hour
}

func defaultSuffix(name, format string) string {
	if format == "parquet" {
		return "_" + name + ".parquet"
	}
	return "_" + name + ".csv"
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadDotEnv loads ./.env if present. Existing variables win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
