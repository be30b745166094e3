//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run with `go run` at a pinned version and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// mockgen - Generates gomock doubles in internal/mocks
//   Run: go generate ./internal/mocks
//   Version: v0.6.0 (pinned in internal/mocks/generate.go)
//   Docs: https://github.com/uber-go/mock
//
// golangci-lint - Linting (honours the nolint directives in cmd/ and bootstrap/)
//   Install: go install github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest
//   Docs: https://golangci-lint.run
