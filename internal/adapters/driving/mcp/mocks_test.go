package mcp

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.IndexQueryService.
type mockQueryService struct {
	rows []domain.OverviewRow
	err  error
}

func (m *mockQueryService) Query(context.Context, domain.Filter) ([]domain.OverviewRow, error) {
	return m.rows, m.err
}

// mockAssembler is a mock implementation of driving.NZBAssembler.
type mockAssembler struct {
	docs []driving.NZBDocument
	err  error
}

func (m *mockAssembler) Assemble(context.Context, []domain.OverviewRow, domain.NZBConfig) ([]driving.NZBDocument, error) {
	return m.docs, m.err
}

// mockSink is a mock implementation of driven.NZBSink.
type mockSink struct {
	written []string
	err     error
}

func (m *mockSink) Write(_ context.Context, name string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.written = append(m.written, name)
	return "sink://" + name, nil
}
