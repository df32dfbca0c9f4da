// Package domain contains the core value objects of the retrieval pipeline:
// document fragments, queries, scored results, and assembled context blocks.
// Entities here are passed by value between pipeline stages and are never
// mutated by a stage that did not create them.
package domain
