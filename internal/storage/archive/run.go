package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/deepvalue/internal/core"
)

// Run is the archived record of one analysis.
type Run struct {
	ID        string                  `json:"id"`
	Symbol    string                  `json:"symbol"`
	StartedAt time.Time               `json:"started_at"`
	Snapshot  *core.FinancialSnapshot `json:"snapshot,omitempty"`
	Report    *core.Report            `json:"report,omitempty"`
	ErrorCode string                  `json:"error_code,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// SetError records err on the run.
func (r *Run) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err.Error()
	var coded *core.Error
	if errors.As(err, &coded) {
		r.ErrorCode = coded.Code
	}
}

// New selects the backend for kind ("localfs" or "s3").
func New(kind, path string, s3cfg S3Config) (Storage, error) {
	switch kind {
	case "", "localfs":
		return NewLocalFS(path)
	case "s3":
		return NewS3(s3cfg)
	default:
		return nil, fmt.Errorf("unknown archive type %q", kind)
	}
}

// RunPath is runs/<symbol>/<yyyymmdd>-<id>.json.
func RunPath(r *Run) string {
	return fmt.Sprintf("runs/%s/%s-%s.json", safeSegment(r.Symbol), r.StartedAt.UTC().Format("20060102"), r.ID)
}

// SaveRun writes the run as indented JSON and returns its path.
func SaveRun(ctx context.Context, store Storage, r *Run) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("encoding run: %w", err))
	}
	path := RunPath(r)
	if err := store.Write(ctx, path, data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("writing %s: %w", path, err))
	}
	return path, nil
}

// LoadRun reads an archived run back.
func LoadRun(ctx context.Context, store Storage, path string) (*Run, error) {
	data, err := store.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("reading %s: %w", path, err))
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decoding %s: %w", path, err))
	}
	return &r, nil
}

// safeSegment keeps a ticker usable as a single path segment.
func safeSegment(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.ReplaceAll(s, "..", "_"))
}
