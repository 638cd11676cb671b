package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// QueryInput is the input schema for the query_overview tool.
type QueryInput struct {
	Group       string `json:"group" jsonschema:"newsgroup name to query"`
	SubjectLike string `json:"subject_like,omitempty" jsonschema:"case-insensitive subject substring filter"`
	NotSubject  string `json:"not_subject,omitempty" jsonschema:"exclude rows whose subject contains this substring"`
	FromLike    string `json:"from_like,omitempty" jsonschema:"case-insensitive poster substring filter"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum rows to return (default 100)"`
}

// OverviewRowOutput is one queried overview row.
type OverviewRowOutput struct {
	ArticleNum uint64 `json:"article_num"`
	Subject    string `json:"subject"`
	FromAddr   string `json:"from_addr"`
	MessageID  string `json:"message_id"`
	DateRaw    string `json:"date_raw"`
}

// QueryOutput is the output schema for the query_overview tool.
type QueryOutput struct {
	Rows  []OverviewRowOutput `json:"rows"`
	Count int                 `json:"count"`
}

// AssembleNZBInput is the input schema for the assemble_nzb tool.
type AssembleNZBInput struct {
	Group               string `json:"group" jsonschema:"newsgroup name to assemble from"`
	SubjectLike         string `json:"subject_like,omitempty" jsonschema:"case-insensitive subject substring filter"`
	FromLike            string `json:"from_like,omitempty" jsonschema:"case-insensitive poster substring filter"`
	RequireCompleteSets bool   `json:"require_complete_sets,omitempty" jsonschema:"skip sets missing parts (off when omitted)"`
	GroupByCollection   bool   `json:"group_by_collection,omitempty" jsonschema:"emit one NZB per collection instead of a single NZB"`
}

// AssembleNZBOutput is the output schema for the assemble_nzb tool.
type AssembleNZBOutput struct {
	Written []string `json:"written"`
	Count   int      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_overview",
		Description: "Query indexed NNTP overview rows for a newsgroup",
	}, s.handleQuery)

	if s.ports.Assembler != nil && s.ports.Sink != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "assemble_nzb",
			Description: "Assemble indexed rows matching a filter into NZB files and write them to the configured sink",
		}, s.handleAssembleNZB)
	}
}

// handleQuery handles the query_overview tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 100
	}

	filter := domain.Filter{
		GroupName:   input.Group,
		SubjectLike: input.SubjectLike,
		NotSubject:  input.NotSubject,
		FromLike:    input.FromLike,
		Limit:       limit,
	}

	rows, err := s.ports.Query.Query(ctx, filter)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Rows:  make([]OverviewRowOutput, len(rows)),
		Count: len(rows),
	}
	for i := range rows {
		output.Rows[i] = OverviewRowOutput{
			ArticleNum: rows[i].ArticleNum,
			Subject:    rows[i].Subject,
			FromAddr:   rows[i].FromAddr,
			MessageID:  rows[i].MessageID,
			DateRaw:    rows[i].DateRaw,
		}
	}

	return nil, output, nil
}

// handleAssembleNZB handles the assemble_nzb tool invocation.
func (s *Server) handleAssembleNZB(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssembleNZBInput,
) (*mcp.CallToolResult, AssembleNZBOutput, error) {
	filter := domain.Filter{
		GroupName:   input.Group,
		SubjectLike: input.SubjectLike,
		FromLike:    input.FromLike,
	}

	rows, err := s.ports.Query.Query(ctx, filter)
	if err != nil {
		return nil, AssembleNZBOutput{}, err
	}

	nzbOpts := domain.NZBConfig{
		RequireCompleteSets: input.RequireCompleteSets,
		GroupByCollection:   input.GroupByCollection,
	}
	docs, err := s.ports.Assembler.Assemble(ctx, rows, nzbOpts)
	if err != nil {
		return nil, AssembleNZBOutput{}, err
	}

	output := AssembleNZBOutput{Written: make([]string, 0, len(docs))}
	for _, doc := range docs {
		loc, err := s.ports.Sink.Write(ctx, doc.Filename, doc.XML)
		if err != nil {
			return nil, AssembleNZBOutput{}, err
		}
		output.Written = append(output.Written, loc)
	}
	output.Count = len(output.Written)

	return nil, output, nil
}
