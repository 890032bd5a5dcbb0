package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
)

// Config selects and configures the classifier artifact.
type Config struct {
	Path string      `mapstructure:"path"`
	ONNX ONNXOptions `mapstructure:"onnx"`
}

// Load opens the model at cfg.Path, choosing the format by file extension.
func Load(cfg Config) (screening.ScoringModel, error) {
	switch ext := strings.ToLower(filepath.Ext(cfg.Path)); ext {
	case ".yaml", ".yml", ".json":
		return LoadLogistic(cfg.Path)
	case ".onnx":
		return LoadONNX(cfg.Path, cfg.ONNX)
	case "":
		return nil, fmt.Errorf("no model path configured")
	default:
		return nil, fmt.Errorf("unsupported model format %q (%s)", ext, cfg.Path)
	}
}
