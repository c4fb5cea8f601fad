package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for brain.
type Config struct {
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	MCP       MCPConfig       `yaml:"mcp"`
	Log       LogConfig       `yaml:"log"`
}

// KnowledgeConfig locates the notes corpus and bounds search output.
type KnowledgeConfig struct {
	RootPath string `yaml:"root_path"`
	MaxFiles int    `yaml:"max_files"`
	// Workers is the number of files scored in parallel. Zero means one per CPU.
	Workers int `yaml:"workers,omitempty"`
}

type OllamaConfig struct {
	Endpoint         string `yaml:"endpoint"`
	Model            string `yaml:"model"`
	MaxContextLength int    `yaml:"max_context_length"`
}

type MCPConfig struct {
	ServerName string `yaml:"server_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns a config with every optional field populated.
func Defaults() *Config {
	return &Config{
		Knowledge: KnowledgeConfig{
			RootPath: "~/org",
			MaxFiles: 5,
		},
		Ollama: OllamaConfig{
			Endpoint:         "http://localhost:11434",
			Model:            "mistral",
			MaxContextLength: 4096,
		},
		MCP: MCPConfig{
			ServerName: "brain-files",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDir returns ~/.config/brain.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "brain")
	}
	return filepath.Join(home, ".config", "brain")
}

// DefaultPath returns ~/.config/brain/config.yaml.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads the config at path, or at DefaultPath when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.Knowledge.RootPath = ExpandPath(cfg.Knowledge.RootPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every problem in cfg at once.
func Validate(cfg *Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Knowledge.RootPath) == "" {
		errs = append(errs, errors.New("knowledge.root_path is required"))
	}
	if cfg.Knowledge.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("knowledge.max_files must be >= 0, got %d", cfg.Knowledge.MaxFiles))
	}
	if cfg.Knowledge.Workers < 0 {
		errs = append(errs, fmt.Errorf("knowledge.workers must be >= 0, got %d", cfg.Knowledge.Workers))
	}
	if cfg.Ollama.MaxContextLength <= 0 {
		errs = append(errs, fmt.Errorf("ollama.max_context_length must be > 0, got %d", cfg.Ollama.MaxContextLength))
	}
	if !logLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	return errors.Join(errs...)
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty. References
// with neither a value nor a default are left untouched.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		hasDefault := len(groups) >= 3 && strings.Contains(match, ":-")
		if val, ok := os.LookupEnv(groups[1]); ok && val != "" {
			return val
		}
		if hasDefault {
			return groups[2]
		}
		return match
	})
}
