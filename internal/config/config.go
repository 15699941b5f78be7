package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ezchuang/wellness/internal/core"
)

const (
	AppName                = "wellness"
	DefaultIntervalMinutes = 25
	DefaultLogLevel        = "info"
	LogFileName            = "wellness.log"
)

var ErrNoTips = errors.New("tip table is empty")

type Config struct {
	IntervalMinutes int
	TipsFile        string
	Headless        bool
	Sound           bool
	LogFile         string
	LogLevel        string
}

func Default() Config {
	return Config{
		IntervalMinutes: DefaultIntervalMinutes,
		LogFile:         filepath.Join(DataDir(AppName), LogFileName),
		LogLevel:        DefaultLogLevel,
	}
}

func (c Config) Validate() error {
	if err := core.ValidateMinutes(c.IntervalMinutes); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// LoadTips reads a YAML list of {title, message} entries. An empty path
// returns the built-in table.
func LoadTips(path string) (core.TipTable, error) {
	if strings.TrimSpace(path) == "" {
		return core.DefaultTips, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tips: %w", err)
	}
	var tips core.TipTable
	if err := yaml.Unmarshal(data, &tips); err != nil {
		return nil, fmt.Errorf("parse tips %s: %w", path, err)
	}
	out := tips[:0]
	for _, t := range tips {
		t.Title = strings.TrimSpace(t.Title)
		t.Message = strings.TrimSpace(t.Message)
		if t.Title == "" && t.Message == "" {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTips)
	}
	return out, nil
}

func DataDir(app string) string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, app)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", app)
	}
	return filepath.Join(home, ".local", "share", app)
}
