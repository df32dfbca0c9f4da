// Package bleve provides a BM25 keyword index backed by the bleve search
// library. The index can live purely in memory or persist to disk.
package bleve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

var _ driven.KeywordIndex = (*Index)(nil)

// indexedFragment is the shape bleve indexes. Filter fields are stored
// lowercased under the keyword analyzer so term queries match exactly
// regardless of case.
type indexedFragment struct {
	Text         string   `json:"text"`
	Title        string   `json:"title"`
	Vendor       string   `json:"vendor"`
	Product      string   `json:"product"`
	DocumentType string   `json:"document_type"`
	Techniques   []string `json:"techniques"`
}

// Index is a KeywordIndex implementation on bleve.
type Index struct {
	index bleve.Index
}

// NewMemOnly creates an in-memory bleve index.
func NewMemOnly() (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

// Open opens the bleve index at path, creating it if it does not exist.
func Open(path string) (*Index, error) {
	index, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("opening keyword index: %w", err)
		}
		index, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("creating keyword index: %w", err)
		}
	}
	return &Index{index: index}, nil
}

// buildMapping maps fragment text through the standard analyzer and the
// filterable metadata fields through the keyword analyzer.
func buildMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("vendor", keywordField)
	doc.AddFieldMappingsAt("product", keywordField)
	doc.AddFieldMappingsAt("document_type", keywordField)
	doc.AddFieldMappingsAt("techniques", keywordField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Add indexes a fragment for keyword search.
func (ix *Index) Add(fragment domain.Fragment) error {
	techniques := make([]string, len(fragment.Metadata.MITRETechniques))
	for i, t := range fragment.Metadata.MITRETechniques {
		techniques[i] = strings.ToLower(t)
	}
	return ix.index.Index(fragment.ID, indexedFragment{
		Text:         fragment.Text,
		Title:        fragment.Metadata.Title,
		Vendor:       strings.ToLower(fragment.Metadata.Vendor),
		Product:      strings.ToLower(fragment.Metadata.Product),
		DocumentType: strings.ToLower(string(fragment.Metadata.DocumentType)),
		Techniques:   techniques,
	})
}

// Delete removes a fragment from the index.
func (ix *Index) Delete(id string) error {
	return ix.index.Delete(id)
}

// LexicalSearch runs a BM25 match query over fragment text, restricted by
// the metadata filters.
func (ix *Index) LexicalSearch(ctx context.Context, text string, k int, filters domain.Filters) ([]driven.KeywordHit, error) {
	match := bleve.NewMatchQuery(text)
	match.SetField("text")

	q := buildQuery(match, filters)
	request := bleve.NewSearchRequestOptions(q, k, 0, false)

	result, err := ix.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	hits := make([]driven.KeywordHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, driven.KeywordHit{FragmentID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// buildQuery combines the text match with term filters on metadata.
func buildQuery(match query.Query, filters domain.Filters) query.Query {
	clauses := []query.Query{match}
	clauses = appendTermClause(clauses, "vendor", filters.Vendor)
	clauses = appendTermClause(clauses, "product", filters.Product)
	clauses = appendTermClause(clauses, "document_type", string(filters.DocumentType))
	clauses = appendTermClause(clauses, "techniques", filters.Technique)
	if len(clauses) == 1 {
		return match
	}
	return bleve.NewConjunctionQuery(clauses...)
}

func appendTermClause(clauses []query.Query, field, value string) []query.Query {
	if value == "" {
		return clauses
	}
	term := bleve.NewTermQuery(strings.ToLower(value))
	term.SetField(field)
	return append(clauses, term)
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
