package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/scorecard"
	"scorecard/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
		wantIs    error
	}{
		{
			name: "valid scorecard",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteScorecardFile(t, t.TempDir(), testutil.SampleScorecardCSV)
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "grau-1.csv")
			},
			wantType: apperrors.ErrTypeNotFound,
			wantIs:   scorecard.ErrInputNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "grau-1.csv")
				require.NoError(t, os.Mkdir(dir, 0o755))
				return dir
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "grau-1.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
			wantIs:   ErrNotCSV,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "grau-1.csv")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
			wantIs:   scorecard.ErrEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputFile(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "reports", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe is removed")
	testutil.AssertNoErrors(t, handler)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err = v.ValidateOutputDirectory(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestQueryValidator(t *testing.T) {
	qv := NewQueryValidator()

	tests := []struct {
		name       string
		query      FilterQuery
		wantFields []string
	}{
		{name: "empty", query: FilterQuery{}},
		{name: "status code", query: FilterQuery{Status: "absent"}},
		{name: "status label", query: FilterQuery{Status: "Apenas Presentes", Themes: []string{"Tema"}}},
		{name: "unknown status", query: FilterQuery{Status: "maybe"}, wantFields: []string{"status"}},
		{
			name:       "theme too long",
			query:      FilterQuery{Themes: []string{strings.Repeat("a", maxThemeLength+1)}},
			wantFields: []string{"theme[0]"},
		},
		{
			name:       "too many themes",
			query:      FilterQuery{Themes: make([]string, 51)},
			wantFields: []string{"theme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := qv.Validate(tt.query)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apperrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apperrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}
