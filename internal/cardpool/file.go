package cardpool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/technobros/cardgame-go/internal/game"
)

// JSONSource reads a JSON array of card templates.
type JSONSource struct {
	path   string
	logger *zap.Logger
}

// NewJSONSource creates a source for the JSON file at path.
func NewJSONSource(path string, logger *zap.Logger) *JSONSource {
	return &JSONSource{path: path, logger: logger}
}

// Load reads and validates the file.
func (s *JSONSource) Load(ctx context.Context) ([]game.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read card pool: %w", err)
	}
	var templates []game.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse card pool JSON %s: %w", s.path, err)
	}
	return sanitize(s.path, templates, s.logger)
}

// Close is a no-op.
func (s *JSONSource) Close() error { return nil }

// PoolFile is the top-level YAML structure.
type PoolFile struct {
	Cards []game.Template `yaml:"cards"`
}

// YAMLSource reads a YAML document with a top-level cards list.
type YAMLSource struct {
	path   string
	logger *zap.Logger
}

// NewYAMLSource creates a source for the YAML file at path.
func NewYAMLSource(path string, logger *zap.Logger) *YAMLSource {
	return &YAMLSource{path: path, logger: logger}
}

// Load reads and validates the file.
func (s *YAMLSource) Load(ctx context.Context) ([]game.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read card pool: %w", err)
	}
	var pf PoolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse card pool YAML %s: %w", s.path, err)
	}
	return sanitize(s.path, pf.Cards, s.logger)
}

// Close is a no-op.
func (s *YAMLSource) Close() error { return nil }
