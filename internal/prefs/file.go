package prefs

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileDoc struct {
	URL       string `yaml:"ghqa:url,omitempty"`
	Questions *int   `yaml:"ghqa:n,omitempty"`
}

// FileStore keeps preferences in a YAML file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store backed by path. A nil logger disables logging.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultPath returns the prefs file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "repoqa", "prefs.yaml")
}

func (f *FileStore) Save(url string, n int) {
	data, err := yaml.Marshal(fileDoc{URL: url, Questions: &n})
	if err != nil {
		f.logger.Debug("prefs marshal failed", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.logger.Debug("prefs dir create failed", zap.String("path", f.path), zap.Error(err))
		return
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		f.logger.Debug("prefs write failed", zap.String("path", f.path), zap.Error(err))
	}
}

func (f *FileStore) Restore() Prefs {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Debug("prefs read failed", zap.String("path", f.path), zap.Error(err))
		}
		return Prefs{}
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		f.logger.Debug("prefs parse failed", zap.String("path", f.path), zap.Error(err))
		return Prefs{}
	}
	return build(doc.URL, doc.Questions)
}
