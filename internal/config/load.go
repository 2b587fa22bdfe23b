package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

// Supported formats. JSON is decoded by the YAML decoder.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format for a file name by extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Errorf("unsupported config extension %q", ext)
	}
}

// Document is an undecoded configuration tree.
type Document = map[string]any

// Parse decodes data into a raw document.
func Parse(data []byte, format Format) (Document, error) {
	doc := make(Document)
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, errors.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", format)
	}
	if doc == nil {
		doc = make(Document)
	}
	return doc, nil
}

// ReadDocument reads and parses a configuration file.
func ReadDocument(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return doc, nil
}

// Decode turns a raw document into a Config with defaults applied. The
// document is re-encoded as YAML so that one set of struct tags serves every
// input format.
func Decode(doc Document) (Config, error) {
	var cfg Config
	data, err := yaml.Marshal(doc)
	if err != nil {
		return cfg, errors.Wrap(err, "encode config document")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads path, merges environment overrides, decodes and validates it.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (Config, Document, error) {
	doc := make(Document)
	if path != "" {
		var err error
		if doc, err = ReadDocument(path); err != nil {
			return Config{}, nil, err
		}
	}
	doc = DeepMerge(doc, EnvOverrides(os.LookupEnv))

	cfg, err := Decode(doc)
	if err != nil {
		return Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, doc, nil
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHARTKIT_"

var envPaths = map[string]string{
	EnvPrefix + "LOG_LEVEL":             "log.level",
	EnvPrefix + "LOG_FORMAT":            "log.format",
	EnvPrefix + "RENDER_MAX_FRAMES":     "render.max_frames",
	EnvPrefix + "RENDER_FRAME_INTERVAL": "render.frame_interval",
}

// EnvOverrides returns the document set by CHARTKIT_* variables.
func EnvOverrides(lookup func(string) (string, bool)) Document {
	doc := make(Document)
	for env, path := range envPaths {
		if val, ok := lookup(env); ok {
			SetByPath(doc, path, parseEnvValue(val))
		}
	}
	return doc
}

func parseEnvValue(val string) any {
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return val
}
