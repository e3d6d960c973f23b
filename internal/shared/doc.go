// Package shared holds helpers used across packages that belong to no
// single layer. Its testutil subpackage provides scorecard fixtures and a
// capturing slog handler for tests.
package shared
