// Package server exposes the suggestion engine as an MCP tool server.
//
// The toolset is fixed:
//   - suggest_tags: one page of scored tag suggestions for a text
//   - reload_index: force an index rebuild from the catalog source
//   - index_stats: report the published index
//
// The server handles the MCP protocol methods (initialize, tools/list,
// tools/call) over three transports (stdio, HTTP, SSE).
//
// Example usage:
//
//	eng, err := suggest.New(ctx, suggest.Options{
//	    Source:   catalog.Source{Path: "tags.csv"},
//	    Embedder: embedder,
//	    Preload:  true,
//	})
//	srv := server.New(eng, server.Config{
//	    ServerInfo: server.ServerInfo{
//	        Name:    "tagsuggest",
//	        Version: "1.0.0",
//	    },
//	})
//
//	server.ServeStdio(ctx, srv)
package server
