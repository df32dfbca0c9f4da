// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the vector and keyword indexes, embedding and
// reranking providers, the generation service, and the shared caches. The
// indexes and the fragment store are read-only from the pipeline's
// perspective; writes belong to the ingestion pipeline, which is outside
// this module's scope.
package driven
