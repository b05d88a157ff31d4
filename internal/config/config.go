package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/wikindex/internal/domain"
)

// Config holds the wikindex configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Events      EventsConfig      `yaml:"events"`
	Auth        AuthConfig        `yaml:"auth"`
	Index       IndexConfig       `yaml:"index"`
	Site        SiteConfig        `yaml:"site"`
	Namespaces  NamespacesConfig  `yaml:"namespaces"`
	Exclusions  ExclusionsConfig  `yaml:"exclusions"`
	Permissions map[int][]string  `yaml:"permissions"` // namespace -> groups allowed to read
	Messages    map[string]string `yaml:"messages"`
	Logging     LoggingConfig     `yaml:"logging"`

	path string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int     `yaml:"port"`
	ReadTimeoutSec  int     `yaml:"read_timeout_sec"`
	WriteTimeoutSec int     `yaml:"write_timeout_sec"`
	ShutdownSec     int     `yaml:"shutdown_timeout_sec"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds primary store settings.
type DatabaseConfig struct {
	Path             string `yaml:"path"`
	BusyTimeoutMs    int    `yaml:"busy_timeout_ms"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// EventsConfig holds the mutation event stream settings.
type EventsConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addrs     []string `yaml:"addrs"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	Stream    string   `yaml:"stream"`
	Group     string   `yaml:"group"`
	Consumer  string   `yaml:"consumer"`
	BatchSize int64    `yaml:"batch_size"`
	BlockMs   int      `yaml:"block_ms"`
}

// IndexConfig holds pagination, population and tree settings.
type IndexConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	BatchSize       int `yaml:"batch_size"`
	TreeMaxDepth    int `yaml:"tree_max_depth"`
	TreeMaxNodes    int `yaml:"tree_max_nodes"`
}

// SiteConfig holds URL building settings.
type SiteConfig struct {
	ArticlePath string `yaml:"article_path"` // "$1" is replaced with the prefixed dbkey
	UploadPath  string `yaml:"upload_path"`
}

// NamespacesConfig overrides the built-in namespace registry.
type NamespacesConfig struct {
	Names    map[int]string `yaml:"names"`
	Content  []int          `yaml:"content"`
	Subpages []int          `yaml:"subpages"`
}

// ExclusionsConfig lists users and groups hidden from user queries.
type ExclusionsConfig struct {
	Users  []string `yaml:"users"`
	Groups []string `yaml:"groups"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse decodes, defaults and validates raw YAML.
func Parse(data []byte) (Config, error) {
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

// Path returns the file the config was loaded from, "" when parsed from memory.
func (c *Config) Path() string { return c.path }

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS)
		if c.HTTP.RateLimitBurst < 1 {
			c.HTTP.RateLimitBurst = 1
		}
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/wikindex.db"
	}
	if c.Database.BusyTimeoutMs <= 0 {
		c.Database.BusyTimeoutMs = 5000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Events.Stream == "" {
		c.Events.Stream = "wikindex:events"
	}
	if c.Events.Group == "" {
		c.Events.Group = "wikindex"
	}
	if c.Events.Consumer == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			c.Events.Consumer = host
		} else {
			c.Events.Consumer = "wikindex-1"
		}
	}
	if c.Events.BatchSize <= 0 {
		c.Events.BatchSize = 64
	}
	if c.Events.BlockMs <= 0 {
		c.Events.BlockMs = 5000
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 25
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 500
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 250
	}
	if c.Index.TreeMaxDepth <= 0 {
		c.Index.TreeMaxDepth = 32
	}
	if c.Index.TreeMaxNodes <= 0 {
		c.Index.TreeMaxNodes = 5000
	}
	if c.Site.ArticlePath == "" {
		c.Site.ArticlePath = "/wiki/$1"
	}
	if c.Site.UploadPath == "" {
		c.Site.UploadPath = "/images"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative, got %v", c.HTTP.RateLimitRPS)
	}
	if c.Events.Enabled && len(c.Events.Addrs) == 0 {
		return fmt.Errorf("events.addrs is required when events are enabled")
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size (%d) exceeds index.max_page_size (%d)",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	if !strings.Contains(c.Site.ArticlePath, "$1") {
		return fmt.Errorf("site.article_path must contain $1, got %q", c.Site.ArticlePath)
	}
	for _, ns := range c.Namespaces.Content {
		if len(c.Namespaces.Names) > 0 {
			if _, ok := c.Namespaces.Names[ns]; !ok && ns != domain.NSMain {
				return fmt.Errorf("namespaces.content lists unknown namespace %d", ns)
			}
		}
	}
	return nil
}

// NamespaceRegistry builds the namespace registry, falling back to the built-in one.
func (c *Config) NamespaceRegistry() *domain.Namespaces {
	if len(c.Namespaces.Names) == 0 {
		if len(c.Namespaces.Content) == 0 && len(c.Namespaces.Subpages) == 0 {
			return domain.DefaultNamespaces()
		}
		names := domain.DefaultNamespaces().Names()
		return domain.NewNamespaces(names, c.Namespaces.Content, c.Namespaces.Subpages)
	}
	return domain.NewNamespaces(c.Namespaces.Names, c.Namespaces.Content, c.Namespaces.Subpages)
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
