package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	statsURI = "ragapp://index/stats"
	jsonMIME = "application/json"
)

// IndexStats is the body of the index stats resource. Available is false
// when the server runs without an index handle.
type IndexStats struct {
	Records   int  `json:"records"`
	Available bool `json:"available"`
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "index-stats",
		Description: "Number of records in the index",
		MIMEType:    jsonMIME,
	}, jsonResource(s.indexStats))
}

func (s *Server) indexStats(ctx context.Context) (IndexStats, error) {
	if s.ports.Index == nil {
		return IndexStats{}, nil
	}
	n, err := s.ports.Index.Count(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("counting records: %w", err)
	}
	return IndexStats{Records: n, Available: true}, nil
}

// jsonResource adapts a value producer into a resource handler that
// answers with the value as indented JSON.
func jsonResource[T any](produce func(context.Context) (T, error)) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", req.Params.URI, err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: jsonMIME, Text: string(body)}},
		}, nil
	}
}
