// Package envfile reads dotenv files for the environment config checker.
package envfile

import (
	"bytes"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/spf13/afero"
)

// Reader implements domain.EnvSource.
type Reader struct {
	fs afero.Fs
}

func New() *Reader { return NewWithFs(afero.NewOsFs()) }

func NewWithFs(fs afero.Fs) *Reader { return &Reader{fs: fs} }

// Read returns the raw content and the parsed variables of path. A missing
// file surfaces as an error satisfying errors.Is(err, os.ErrNotExist).
func (r *Reader) Read(path string) (domain.EnvFile, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return domain.EnvFile{}, fmt.Errorf("reading env file: %w", err)
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return domain.EnvFile{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return domain.EnvFile{Content: string(data), Vars: vars}, nil
}
