package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"scorecard/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Delimiter rune // zero means comma
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FileWriter saves exports into the configured export directory.
type FileWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewFileWriter creates a writer rooted at paths.ExportDir.
func NewFileWriter(paths *config.Paths, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{paths: paths, logger: logger.With("component", "exporter")}
}

// Create opens name for writing, creating the export directory when needed.
// Absolute names are used as-is; relative ones land in the export directory.
func (w *FileWriter) Create(name string) (*os.File, string, error) {
	fullPath := name
	if !filepath.IsAbs(name) {
		fullPath = w.paths.ExportPath(name)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}
	return file, fullPath, nil
}

// WriteFile runs write against a new file and reports where it went.
func (w *FileWriter) WriteFile(name string, write func(io.Writer) error) (string, error) {
	file, fullPath, err := w.Create(name)
	if err != nil {
		return "", err
	}

	if err := write(file); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	info, err := os.Stat(fullPath)
	if err == nil {
		w.logger.Info("export written",
			slog.String("path", fullPath),
			slog.Int64("bytes", info.Size()))
	}
	return fullPath, nil
}
