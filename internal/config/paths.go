package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every file system location the application touches, already
// resolved against the base directory.
type Paths struct {
	BaseDir    string
	InputFile  string
	AssetsDir  string
	Stylesheet string
	Logo       string
	ExportDir  string
	LogsDir    string
}

// ResolvePaths turns the configured relative paths into absolute ones.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	assets := resolve(base, c.Paths.AssetsDir)
	logFile := resolve(base, c.Logging.FilePath)

	return &Paths{
		BaseDir:    base,
		InputFile:  resolve(base, c.Input.File),
		AssetsDir:  assets,
		Stylesheet: resolve(assets, c.Paths.Stylesheet),
		Logo:       resolve(assets, c.Paths.Logo),
		ExportDir:  resolve(base, c.Paths.ExportDir),
		LogsDir:    filepath.Dir(logFile),
	}, nil
}

// DisplayLogo is the logo path as users configured it, relative to the base
// directory, for messages shown on the page.
func (c *Config) DisplayLogo() string {
	return filepath.ToSlash(filepath.Join(c.Paths.AssetsDir, c.Paths.Logo))
}

// EnsureDirectories creates the directories the application writes to.
func (p *Paths) EnsureDirectories(logger *slog.Logger) error {
	for _, dir := range []string{p.ExportDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if logger != nil {
			logger.Debug("ensured directory exists", slog.String("directory", dir))
		}
	}
	return nil
}

// ExportPath returns where an export with the given file name is written.
func (p *Paths) ExportPath(name string) string {
	return filepath.Join(p.ExportDir, filepath.Base(name))
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
