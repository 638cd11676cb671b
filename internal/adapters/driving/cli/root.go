// Package cli implements the nntpidx command-line driving adapter: fetch,
// query, nzb, serve, and tui subcommands wired to the core ports.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// version is set via -ldflags at build time; "dev" otherwise.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "nntpidx",
	Short: "Newsgroup overview indexer, relational store, and NZB synthesizer",
	Long: `nntpidx fetches article overview metadata from an NNTP server,
persists it in a relational index, and reassembles complete multipart
document sets as NZB files.`,
}

// Ports aggregates the core services the CLI dispatches into. Each
// subcommand checks its own dependency before running so commands that
// were never wired (e.g. fetch without serve's scheduler) fail with a
// clear error rather than a nil panic.
var (
	fetchOrchestrator driving.FetchOrchestrator
	queryService      driving.IndexQueryService
	nzbAssembler      driving.NZBAssembler
	nzbSink           driven.NZBSink
	scheduler         driving.Scheduler
	httpServer        driving.HTTPServer
)

// SetPorts injects the core services the CLI dispatches into. Called once
// from cmd/nntpidx/main.go after the adapters are constructed. httpSrv is
// nil when [http] enabled = false.
func SetPorts(orchestrator driving.FetchOrchestrator, query driving.IndexQueryService, nzb driving.NZBAssembler, sink driven.NZBSink, sched driving.Scheduler, httpSrv driving.HTTPServer) {
	fetchOrchestrator = orchestrator
	queryService = query
	nzbAssembler = nzb
	nzbSink = sink
	scheduler = sched
	httpServer = httpSrv
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
