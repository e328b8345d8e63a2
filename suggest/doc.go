// Package suggest is the unified facade for tag suggestion.
//
// [Engine] wires the catalog source, the vector index, the query
// resolver, and the candidate pool paginator into three operations:
//
//   - [Engine.Suggest]: one page of scored tag suggestions for a text
//   - [Engine.Reload]: forced index rebuild from the catalog source
//   - [Engine.Stats]: published index summary
//
// Construction is explicit: the embedder, optional reranker, and
// optional cache backend are built by the caller and injected through
// [Options]. Nothing is looked up from ambient globals.
//
//	eng, err := suggest.New(ctx, suggest.Options{
//	    Source:   catalog.Source{Path: cfg.Catalog.CSVPath},
//	    Embedder: embedder,
//	    Preload:  true,
//	})
//	resp, err := eng.Suggest(ctx, suggest.Request{Text: article})
//
// Suggest degrades instead of failing: an unreachable cache, a failed
// embedding call, or a corrupt cursor each produce an empty or uncached
// page, never an error. Only Reload and Stats surface index problems,
// since their callers are operators rather than end users.
package suggest
