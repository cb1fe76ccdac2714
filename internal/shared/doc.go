// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides test fixtures: an in-memory slog handler
// for asserting on log output and a builder for xlsx workbooks.
package shared
