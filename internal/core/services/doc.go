// Package services implements the retrieval pipeline stages: query
// processing, hybrid search, reranking, diversification, and context
// assembly, plus the orchestrator that runs them in sequence for a request.
//
// Each stage consumes the previous stage's complete output and produces a
// new value; no stage mutates its input. The only state shared across
// concurrent requests are the rerank-score and embedding caches, which are
// write-once by content hash.
package services
