package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brianbland/noisifier/pkg/noise"
)

// DefaultParamsFile is the parameter document read and written by default.
const DefaultParamsFile = "noiser_parameters.json"

// Store reads and writes noise parameters as one flat document. Loads merge
// into existing values; writes replace the whole document.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store for path. An empty path selects DefaultParamsFile.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultParamsFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) yaml() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the document. A missing or unreadable file yields an empty
// document and a warning; a malformed one is an error. Only keys starting with
// "p_" or "eps" are returned.
func (s *Store) Load() (map[string]float64, []noise.Warning, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		w := noise.Warning{
			Kind:    noise.WarnStoreUnreadable,
			Message: fmt.Sprintf("failed to read noise parameters from %s: %v", s.path, err),
		}
		s.logger.Warn(w.Message, slog.String("kind", w.Kind.String()))
		return map[string]float64{}, []noise.Warning{w}, nil
	}

	doc := map[string]float64{}
	if s.yaml() {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse noise parameters %s: %w", s.path, err)
	}

	params := make(map[string]float64, len(doc))
	for key, value := range doc {
		if strings.HasPrefix(key, "p_") || strings.HasPrefix(key, "eps") {
			params[key] = value
		}
	}
	return params, nil, nil
}

// LoadParams implements noiser.ParamSource.
func (s *Store) LoadParams() (map[string]float64, error) {
	params, _, err := s.Load()
	return params, err
}

// Save writes params as the whole document. The file is replaced atomically;
// concurrent writers are not coordinated and the last rename wins.
func (s *Store) Save(params noise.Params) error {
	var (
		data []byte
		err  error
	)
	if s.yaml() {
		data, err = yaml.Marshal(params.Map())
	} else {
		data, err = json.MarshalIndent(params.Map(), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal noise parameters: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write noise parameters: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
