// Package mcp provides an MCP (Model Context Protocol) server adapter for
// nntpidx, exposing index queries and NZB assembly as tools and resources
// that an AI assistant can call directly.
package mcp

import (
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// Ports aggregates the driving/driven port interfaces the MCP server needs.
// A single injection point, mirroring the CLI adapter's own Ports globals.
type Ports struct {
	// Query exposes the index_store query operation. Required.
	Query driving.IndexQueryService

	// Assembler groups queried rows into NZB documents. Optional; the
	// assemble_nzb tool is unavailable without it.
	Assembler driving.NZBAssembler

	// Sink writes assembled NZB documents. Optional, same as Assembler.
	Sink driven.NZBSink
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
