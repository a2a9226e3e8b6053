package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/spf13/afero"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"bin":          true,
	"testdata":     true,
}

// FileScanner implements domain.ProjectFiles on top of an afero filesystem.
type FileScanner struct {
	fs afero.Fs
}

// New scans the real filesystem.
func New() *FileScanner {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs scans the given filesystem, typically afero.NewMemMapFs in tests.
func NewWithFs(fs afero.Fs) *FileScanner {
	return &FileScanner{fs: fs}
}

// Find walks root and returns every file whose root-relative path matches one
// of the patterns. Patterns use '/' as separator; "**" crosses directories.
// Dependency and build output directories below root are skipped.
func (s *FileScanner) Find(root string, patterns []string) ([]string, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	var matches []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, g := range globs {
			if g.Match(rel) {
				matches = append(matches, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return matches, nil
}

func (s *FileScanner) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// ReadHead returns at most n bytes from the start of the file.
func (s *FileScanner) ReadHead(path string, n int64) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, n))
}

func (s *FileScanner) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

func (s *FileScanner) IsDir(path string) bool {
	ok, err := afero.IsDir(s.fs, path)
	return err == nil && ok
}

// ReadDir lists dir sorted by name.
func (s *FileScanner) ReadDir(dir string) ([]domain.FileEntry, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.FileEntry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, domain.FileEntry{
			Name:    fi.Name(),
			IsDir:   fi.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return entries, nil
}
