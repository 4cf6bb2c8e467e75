// Package config loads server configuration from defaults, an optional
// YAML file, and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "toolbelt.yaml"
	homeConfigName    = "config.yaml"
	homeConfigDir     = ".toolbelt-mcp"
)

// Config holds everything the serve command needs. Duration fields are
// Go duration strings and are parsed at use sites after Validate.
type Config struct {
	Port              string `yaml:"port"`
	SQLitePath        string `yaml:"sqlite_path"`
	GeminiBaseURL     string `yaml:"gemini_base_url"`
	GeminiModel       string `yaml:"gemini_model"`
	GithubAPIURL      string `yaml:"github_api_url"`
	UploadBranch      string `yaml:"upload_branch"`
	UploadDir         string `yaml:"upload_dir"`
	SessionIdleTTL    string `yaml:"session_idle_ttl"`
	SweepSchedule     string `yaml:"sweep_schedule"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:              "3000",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com",
		GeminiModel:       "gemini-2.0-flash-preview-image-generation",
		GithubAPIURL:      "https://api.github.com",
		UploadBranch:      "main",
		UploadDir:         "images",
		SessionIdleTTL:    "30m",
		SweepSchedule:     "* * * * *",
		MaxBodyBytes:      1 << 20,
		ReadHeaderTimeout: "10s",
	}
}

// Load resolves the config file (explicit path, project file, or home
// file), merges it over the defaults, and applies env overrides.
func Load(explicitPath string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve user home: %w", err)
	}
	return LoadFrom(explicitPath, cwd, homeDir)
}

// LoadFrom is a testable variant of Load.
func LoadFrom(explicitPath, cwd, homeDir string) (Config, error) {
	cfg := Default()

	path, found, err := DiscoverPathFrom(explicitPath, cwd, homeDir)
	if err != nil {
		return Config{}, err
	}
	if found {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DiscoverPath resolves the config file location with first-match
// semantics: explicit path, ./toolbelt.yaml, ~/.toolbelt-mcp/config.yaml.
func DiscoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("config: resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("config: resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath. An explicit
// path that does not exist is an error; missing discovery candidates
// are not.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 3)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config: file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("config: checking path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %q: %w", path, err)
	}
	c.expand()
	return nil
}

// expand applies ${VAR} expansion to string fields read from YAML.
func (c *Config) expand() {
	c.Port = os.ExpandEnv(c.Port)
	c.SQLitePath = os.ExpandEnv(c.SQLitePath)
	c.GeminiBaseURL = os.ExpandEnv(c.GeminiBaseURL)
	c.GeminiModel = os.ExpandEnv(c.GeminiModel)
	c.GithubAPIURL = os.ExpandEnv(c.GithubAPIURL)
	c.UploadBranch = os.ExpandEnv(c.UploadBranch)
	c.UploadDir = os.ExpandEnv(c.UploadDir)
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.SQLitePath = getEnv("TOOLBELT_SQLITE_PATH", c.SQLitePath)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.GithubAPIURL = getEnv("GITHUB_API_URL", c.GithubAPIURL)
	c.UploadBranch = getEnv("TOOLBELT_UPLOAD_BRANCH", c.UploadBranch)
	c.UploadDir = getEnv("TOOLBELT_UPLOAD_DIR", c.UploadDir)
	c.SessionIdleTTL = getEnv("TOOLBELT_SESSION_TTL", c.SessionIdleTTL)
	c.SweepSchedule = getEnv("TOOLBELT_SWEEP_SCHEDULE", c.SweepSchedule)
	c.MaxBodyBytes = int64(getEnvInt("TOOLBELT_MAX_BODY", int(c.MaxBodyBytes)))
	c.ReadHeaderTimeout = getEnv("TOOLBELT_READ_HEADER_TIMEOUT", c.ReadHeaderTimeout)
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if port, err := strconv.Atoi(strings.TrimSpace(c.Port)); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}
	if strings.TrimSpace(c.UploadBranch) == "" {
		return errors.New("config: upload branch is required")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if _, err := time.ParseDuration(c.SessionIdleTTL); err != nil {
		return fmt.Errorf("config: invalid session idle ttl %q", c.SessionIdleTTL)
	}
	if _, err := time.ParseDuration(c.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("config: invalid read header timeout %q", c.ReadHeaderTimeout)
	}
	if strings.TrimSpace(c.SweepSchedule) == "" {
		return errors.New("config: sweep schedule is required")
	}
	return nil
}

// IdleTTL returns the parsed session idle TTL. Zero disables sweeping.
// Call after Validate.
func (c Config) IdleTTL() time.Duration {
	d, _ := time.ParseDuration(c.SessionIdleTTL)
	return d
}

// HeaderTimeout returns the parsed read-header timeout. Call after
// Validate.
func (c Config) HeaderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadHeaderTimeout)
	return d
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string { return ":" + strings.TrimSpace(c.Port) }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
