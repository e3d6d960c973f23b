package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/scorecard"
)

// ErrNotCSV marks an input whose extension is not .csv.
var ErrNotCSV = errors.New("input is not a CSV file")

// FileValidator checks the files the dashboard and CLI read and write.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path is an existing, readable regular file.
// A missing file wraps scorecard.ErrInputNotFound.
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return nil, apperrors.NewNotFoundError("file "+path, fmt.Errorf("%w: %w", scorecard.ErrInputNotFound, err)).
			WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, apperrors.NewStorageError("failed to stat "+path, err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file", slog.String("path", path))
		return nil, apperrors.NewAppValidationError(path + " is a directory, not a file").
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, apperrors.NewStorageError(path+" is not readable", err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateInputFile checks a scorecard input before it is loaded: it must be
// a readable, non-empty .csv file.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		v.logger.Error("file is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("%s is not a CSV file (extension: %q)", filepath.Base(path), ext), ErrNotCSV).
			WithContext("path", path)
	}

	if info.Size() == 0 {
		v.logger.Error("input file is empty", slog.String("file", path))
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			filepath.Base(path)+" is empty", scorecard.ErrEmptyInput).
			WithContext("path", path)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}
