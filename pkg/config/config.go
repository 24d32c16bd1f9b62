// Package config reads the server configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/graph-guard/chainmap/pkg/chainmap"
	plog "github.com/phuslu/log"
	yaml "gopkg.in/yaml.v3"
)

const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultHasher       = chainmap.HasherNamePolynomial
	DefaultLogLevel     = "info"
)

type Config struct {
	Host         string
	Capacity     int
	LoadFactor   float64
	Hasher       string
	LogLevel     plog.Level
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type serverConfig struct {
	Host         string         `yaml:"host"`
	Capacity     *int           `yaml:"capacity"`
	LoadFactor   *float64       `yaml:"load_factor"`
	Hasher       string         `yaml:"hasher"`
	LogLevel     string         `yaml:"log_level"`
	ReadTimeout  *time.Duration `yaml:"read_timeout"`
	WriteTimeout *time.Duration `yaml:"write_timeout"`
}

// Read reads the YAML server config file at filePath from filesystem.
func Read(filesystem fs.FS, filePath string) (*Config, error) {
	f, err := filesystem.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ErrorMissing{
				FilePath: filePath,
				Feature:  "server config",
			}
		}
		return nil, fmt.Errorf("reading server config: %w", err)
	}
	defer f.Close()

	var c serverConfig
	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil {
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Feature:  "syntax",
			Message:  err.Error(),
		}
	}

	if c.Host == "" {
		return nil, &ErrorMissing{
			FilePath: filePath,
			Feature:  "host",
		}
	}

	conf := &Config{
		Host:         c.Host,
		Capacity:     chainmap.DefaultCapacity,
		LoadFactor:   chainmap.DefaultLoadFactor,
		Hasher:       DefaultHasher,
		LogLevel:     plog.InfoLevel,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	if c.Capacity != nil {
		if *c.Capacity < 1 {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "capacity",
				Message:  "must be greater zero",
			}
		}
		conf.Capacity = *c.Capacity
	}

	if c.LoadFactor != nil {
		if !(*c.LoadFactor > 0 && *c.LoadFactor <= 1) {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "load_factor",
				Message:  "must be in (0, 1]",
			}
		}
		conf.LoadFactor = *c.LoadFactor
	}

	if c.Hasher != "" {
		if chainmap.HasherByName(c.Hasher) == nil {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "hasher",
				Message:  fmt.Sprintf("unsupported hasher %q", c.Hasher),
			}
		}
		conf.Hasher = c.Hasher
	}

	if c.LogLevel != "" {
		switch strings.ToLower(c.LogLevel) {
		case "debug":
			conf.LogLevel = plog.DebugLevel
		case "info":
			conf.LogLevel = plog.InfoLevel
		case "warn":
			conf.LogLevel = plog.WarnLevel
		case "error":
			conf.LogLevel = plog.ErrorLevel
		default:
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "log_level",
				Message:  fmt.Sprintf("unsupported log level %q", c.LogLevel),
			}
		}
	}

	if c.ReadTimeout != nil {
		if *c.ReadTimeout < 0 {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "read_timeout",
				Message:  "must not be negative",
			}
		}
		conf.ReadTimeout = *c.ReadTimeout
	}

	if c.WriteTimeout != nil {
		if *c.WriteTimeout < 0 {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "write_timeout",
				Message:  "must not be negative",
			}
		}
		conf.WriteTimeout = *c.WriteTimeout
	}

	return conf, nil
}

// NewMap creates a new map instance configured by c.
func (c *Config) NewMap() *chainmap.Map[string] {
	return chainmap.New[string](
		c.Capacity, c.LoadFactor, chainmap.HasherByName(c.Hasher),
	)
}

type ErrorMissing struct {
	FilePath string
	Feature  string
}

func (e ErrorMissing) Error() string {
	var b strings.Builder
	if e.Feature == "" {
		b.Grow(len("missing ") + len(e.FilePath))
		b.WriteString("missing ")
		b.WriteString(e.FilePath)
		return b.String()
	}
	b.Grow(len("missing ") + len(e.Feature) + len(" in ") + len(e.FilePath))
	b.WriteString("missing ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	return b.String()
}

type ErrorIllegal struct {
	FilePath string
	Feature  string
	Message  string
}

func (e ErrorIllegal) Error() string {
	var b strings.Builder
	b.Grow(len("illegal ") +
		len(e.Feature) +
		len(" in ") +
		len(e.FilePath) +
		len(": ") +
		len(e.Message))
	b.WriteString("illegal ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
