package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

const uriScheme = "nntpidx://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "groups/{group}/rows",
		Name:        "group-rows",
		Description: "Most recently indexed overview rows for a newsgroup",
		MIMEType:    "application/json",
	}, s.handleGroupRowsResource)
}

// handleGroupRowsResource returns the most recently indexed rows for the
// group named in the URI.
func (s *Server) handleGroupRowsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	group := extractGroup(req.Params.URI)
	if group == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rows, err := s.ports.Query.Query(ctx, domain.Filter{GroupName: group})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", group, err)
	}
	// Rows come back in ascending article order; keep the newest 100.
	if len(rows) > 100 {
		rows = rows[len(rows)-100:]
	}

	type rowInfo struct {
		ArticleNum uint64 `json:"article_num"`
		Subject    string `json:"subject"`
		MessageID  string `json:"message_id"`
	}
	infos := make([]rowInfo, len(rows))
	for i := range rows {
		infos[i] = rowInfo{ArticleNum: rows[i].ArticleNum, Subject: rows[i].Subject, MessageID: rows[i].MessageID}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling rows: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractGroup extracts the group name from a URI like
// nntpidx://groups/{group}/rows.
func extractGroup(uri string) string {
	const prefix = uriScheme + "groups/"
	const suffix = "/rows"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(uri, suffix)
}
