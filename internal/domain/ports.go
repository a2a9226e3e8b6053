package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
)

// ConfigLoader loads the run configuration from a file path.
type ConfigLoader interface {
	Load(path string) (ValidationConfig, error)
}

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DatabaseProbe opens sessions against a parsed connection string.
type DatabaseProbe interface {
	Supports(engine string) bool
	Open(ctx context.Context, dsn dbcheck.DSN) (DatabaseSession, error)
}

// DatabaseSession is an open connection used for schema inspection. It
// only reads. Engines without a relational schema return ErrNotApplicable.
type DatabaseSession interface {
	Ping(ctx context.Context) error
	Tables(ctx context.Context) ([]string, error)
	IndexedColumns(ctx context.Context, table string) ([]string, error)
	Migration(ctx context.Context) (MigrationState, error)
	Close() error
}

// MigrationState describes the schema_migrations version when one exists.
type MigrationState struct {
	Known   bool
	Version uint
	Dirty   bool
}

// GitInfo reads version control state of the project under validation.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	IsClean(projectPath string) (bool, error)
}

// ReportWriter persists a finished report and returns the written paths.
type ReportWriter interface {
	Write(report *Report, dir string, at time.Time) ([]string, error)
}

// MetricsSink records the outcome of a run.
type MetricsSink interface {
	Record(report *Report) error
}

// RunHistory appends and lists past runs stored under a report directory.
type RunHistory interface {
	Save(dir string, entry RunEntry) error
	Load(dir string) ([]RunEntry, error)
}

// ProjectFiles reads the tree of the project under validation. Paths
// returned by Find are slash-separated and relative to root.
type ProjectFiles interface {
	Find(root string, patterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	ReadHead(path string, n int64) ([]byte, error)
	Exists(path string) bool
	IsDir(path string) bool
	ReadDir(dir string) ([]FileEntry, error)
}

// FileEntry is one directory listing entry.
type FileEntry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// EnvSource reads dotenv files.
type EnvSource interface {
	Read(path string) (EnvFile, error)
}

// EnvFile is a parsed dotenv file together with its raw text, which the
// section header check needs.
type EnvFile struct {
	Content string
	Vars    map[string]string
}
