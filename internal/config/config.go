package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mgpai22/attool/internal/render"
	"github.com/mgpai22/attool/internal/transcribe"
)

// SectionName is the INI section holding the settings.
const SectionName = "SETTINGS"

// Settings mirrors the run flags. Start and end stay textual in files so
// blank values mean "use the default" and numbers may be quoted.
type Settings struct {
	Input    string `yaml:"input" ini:"input"`
	Start    string `yaml:"start" ini:"start"`
	End      string `yaml:"end" ini:"end"`
	Output   string `yaml:"output" ini:"output"`
	WorkDir  string `yaml:"work_dir" ini:"work_dir"`
	Format   string `yaml:"format" ini:"format"`
	Provider string `yaml:"provider" ini:"provider"`
	Model    string `yaml:"model" ini:"model"`
	Language string `yaml:"language" ini:"language"`
	Codec    string `yaml:"codec" ini:"codec"`

	// filled by Validate
	StartMinutes float64 `yaml:"-" ini:"-"`
	EndMinutes   float64 `yaml:"-" ini:"-"`
}

// Load reads settings from an .ini file ([SETTINGS] section) or a YAML
// file, chosen by extension. The result is validated.
func Load(path string) (*Settings, error) {
	var s Settings

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini", ".cfg":
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !file.HasSection(SectionName) {
			return nil, fmt.Errorf("%s: missing [%s] section", path, SectionName)
		}
		if err := file.Section(SectionName).MapTo(&s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported settings file %q: use .ini or .yaml", path)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// Validate checks values and fills defaults.
func (s *Settings) Validate() error {
	var err error
	if s.StartMinutes, err = render.ParseMinutes(s.Start, 0); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if s.EndMinutes, err = render.ParseMinutes(s.End, math.Inf(1)); err != nil {
		return fmt.Errorf("end: %w", err)
	}

	format, err := render.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	s.Format = string(format)

	provider, err := transcribe.ParseProvider(s.Provider)
	if err != nil {
		return err
	}
	s.Provider = string(provider)

	s.Input = strings.TrimSpace(s.Input)
	s.Output = strings.TrimSpace(s.Output)
	if s.WorkDir == "" {
		s.WorkDir = "work"
	}
	if s.Codec == "" {
		s.Codec = "aac"
	}
	return nil
}

// Default returns validated settings with nothing set.
func Default() *Settings {
	s := &Settings{}
	_ = s.Validate()
	return s
}

// Window is the plain-text time window in minutes.
func (s *Settings) Window() render.Window {
	return render.Window{Start: s.StartMinutes, End: s.EndMinutes}
}
