package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// Test doubles for the driving ports.

type mockAuthorizer struct {
	record *domain.TokenRecord
	err    error
	gotID  string
}

func (m *mockAuthorizer) Authorize(_ context.Context, clientID string) (*domain.TokenRecord, error) {
	m.gotID = clientID
	return m.record, m.err
}

type mockTokens struct {
	record *domain.TokenRecord
	getErr error
	put    *domain.TokenRecord
	putErr error
}

func (m *mockTokens) Get(_ context.Context) (*domain.TokenRecord, error) {
	return m.record, m.getErr
}

func (m *mockTokens) Put(_ context.Context, record domain.TokenRecord) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.put = &record
	return nil
}

func (m *mockTokens) ValidAccessToken(_ context.Context) (string, error) {
	return "", nil
}

type mockResults struct {
	results []domain.PollResult
}

func (m *mockResults) RecordResult(_ context.Context, _ *domain.PollResult) error { return nil }
func (m *mockResults) PruneResults(_ context.Context, _ int) error                { return nil }

func (m *mockResults) ListResults(_ context.Context, limit int) ([]domain.PollResult, error) {
	if limit > len(m.results) {
		limit = len(m.results)
	}
	return m.results[:limit], nil
}

// withServices swaps in test services and restores afterwards.
func withServices(t *testing.T, s Services) {
	t.Helper()
	old := services
	services = s
	t.Cleanup(func() { services = old })
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
