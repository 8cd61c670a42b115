package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quire/pkg/document"
)

// Config mirrors quire.yaml. Zero values mean "use the default".
type Config struct {
	DataDir       string              `yaml:"data_dir,omitempty"`
	HistoryLimit  int                 `yaml:"history_limit,omitempty"`
	RemoteURL     string              `yaml:"remote_url,omitempty"`
	OfflineMarker string              `yaml:"offline_marker,omitempty"`
	InitAttempts  int                 `yaml:"init_attempts,omitempty"`
	InitBackoff   time.Duration       `yaml:"init_backoff,omitempty"`
	EventBuffer   int                 `yaml:"event_buffer,omitempty"`
	Templates     []document.Template `yaml:"templates,omitempty"`
}

// LoadConfig reads a YAML config file. A missing file yields an empty
// Config and no error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, t := range cfg.Templates {
		if t.ID == "" {
			return cfg, fmt.Errorf("parse %s: template %d has no id", path, i)
		}
	}
	return cfg, nil
}

// Options converts the file into functional options. Callers append their
// own options afterwards so flags win over the file.
func (c Config) Options() []Option {
	var opts []Option
	if c.HistoryLimit > 0 {
		opts = append(opts, WithHistoryLimit(c.HistoryLimit))
	}
	if c.RemoteURL != "" {
		opts = append(opts, WithRemoteURL(c.RemoteURL))
	}
	if c.OfflineMarker != "" {
		opts = append(opts, WithOfflineMarker(c.OfflineMarker))
	}
	if c.InitAttempts > 0 || c.InitBackoff > 0 {
		opts = append(opts, WithInitRetry(c.InitAttempts, c.InitBackoff))
	}
	if c.EventBuffer > 0 {
		opts = append(opts, WithEventBuffer(c.EventBuffer))
	}
	if len(c.Templates) > 0 {
		opts = append(opts, WithTemplates(c.Templates...))
	}
	return opts
}
