package scorecard

import (
	"bytes"
	"context"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	apperrors "scorecard/internal/errors"
)

// Input is the raw content of the scorecard file plus its identity.
type Input struct {
	Path    string
	Content []byte
	Digest  string
	Size    int64
	ModTime time.Time
}

// Digest returns the hex BLAKE2b-256 of content.
func Digest(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ReadInput reads path in full. A missing file yields an error matching
// ErrInputNotFound; every other failure is a storage error.
func ReadInput(path string) (Input, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Input{}, apperrors.NewNotFoundError("scorecard input "+path, fmt.Errorf("%w: %w", ErrInputNotFound, err)).
				WithContext("path", path)
		}
		return Input{}, apperrors.NewStorageError("cannot read scorecard input", err).WithContext("path", path)
	}

	in := Input{
		Path:    path,
		Content: content,
		Digest:  Digest(content),
		Size:    int64(len(content)),
	}
	if info, err := os.Stat(path); err == nil {
		in.ModTime = info.ModTime()
	}
	return in, nil
}

// Loader runs the read → normalize pipeline.
type Loader struct {
	opts   ReadOptions
	rules  Rules
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(opts ReadOptions, rules Rules, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		opts:   opts,
		rules:  rules,
		logger: logger.With(slog.String("component", "scorecard_loader")),
	}
}

// Parse builds a bundle from already-read input. Either a complete bundle or
// an error is returned, never a partial result.
func (l *Loader) Parse(ctx context.Context, in Input) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := ReadTable(bytes.NewReader(in.Content), l.opts)
	if err != nil {
		l.logger.ErrorContext(ctx, "scorecard parse failed",
			slog.String("path", in.Path),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	bundle := Build(table, l.rules)
	bundle.Source = Source{
		Path:   in.Path,
		Digest: in.Digest,
		Size:   in.Size,
		Rows:   len(table.Rows),
	}

	for _, w := range bundle.Warnings {
		l.logger.WarnContext(ctx, "scorecard value fallback",
			slog.String("code", w.Code),
			slog.Int("line", w.Line),
			slog.String("field", w.Field),
			slog.String("value", w.Value),
			slog.String("detail", w.Message),
		)
	}

	l.logger.InfoContext(ctx, "scorecard loaded",
		slog.String("path", in.Path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("final_score", bundle.FinalScore),
		slog.String("classification", bundle.Classification),
		slog.Int("requirements_met", bundle.RequirementsMet),
		slog.Int("total_requirements", bundle.TotalRequirements),
		slog.Int("warnings", len(bundle.Warnings)),
	)

	return bundle, nil
}

// Load reads and parses path.
func (l *Loader) Load(ctx context.Context, path string) (*Bundle, error) {
	in, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(ctx, in)
}
