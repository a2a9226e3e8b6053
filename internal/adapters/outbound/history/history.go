package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/spf13/afero"
)

// FileName is the history file kept inside the report directory.
const FileName = "history.json"

// FileHistory implements domain.RunHistory as a JSON array on disk.
type FileHistory struct {
	fs afero.Fs
}

func New() *FileHistory {
	return NewWithFs(afero.NewOsFs())
}

func NewWithFs(fs afero.Fs) *FileHistory {
	return &FileHistory{fs: fs}
}

func (h *FileHistory) Save(dir string, entry domain.RunEntry) error {
	entries, err := h.Load(dir)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	if err := h.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(h.fs, filepath.Join(dir, FileName), data, 0o644)
}

// Load returns the recorded runs oldest first. A missing file is an empty history.
func (h *FileHistory) Load(dir string) ([]domain.RunEntry, error) {
	data, err := afero.ReadFile(h.fs, filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return entries, nil
}
