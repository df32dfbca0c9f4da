// Package sqlite provides a persistent fragment store with a brute-force
// vector scan. Suitable for corpora up to a few hundred thousand fragments;
// beyond that an approximate index should front it.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no cgo.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

var (
	_ driven.FragmentStore = (*Store)(nil)
	_ driven.VectorIndex   = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS fragments (
	id            TEXT PRIMARY KEY,
	text          TEXT NOT NULL,
	document_type TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	vendor        TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	product       TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	techniques    TEXT NOT NULL DEFAULT '',
	source_path   TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	last_updated  DATETIME,
	embedding     BLOB
);
CREATE INDEX IF NOT EXISTS idx_fragments_vendor  ON fragments(vendor);
CREATE INDEX IF NOT EXISTS idx_fragments_product ON fragments(product);
`

// Store is a SQLite-backed fragment store and vector index.
type Store struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewStore opens (or creates) the fragment database at the given data
// directory. If dataDir is empty, defaults to ~/.docqa/data/fragments.db.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "fragments.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath, dimensions: dimensions}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Put stores or updates a fragment with its embedding. A missing ID is
// assigned. The populated ID is returned.
func (s *Store) Put(ctx context.Context, fragment domain.Fragment, vector []float32) (string, error) {
	if fragment.ID == "" {
		fragment.ID = uuid.NewString()
	}
	if vector != nil && len(vector) != s.dimensions {
		return "", fmt.Errorf("%w: embedding has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	var lastUpdated any
	if !fragment.Metadata.LastUpdated.IsZero() {
		lastUpdated = fragment.Metadata.LastUpdated.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fragments
			(id, text, document_type, vendor, product, techniques, source_path, title, last_updated, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			document_type = excluded.document_type,
			vendor = excluded.vendor,
			product = excluded.product,
			techniques = excluded.techniques,
			source_path = excluded.source_path,
			title = excluded.title,
			last_updated = excluded.last_updated,
			embedding = excluded.embedding
	`, fragment.ID, fragment.Text,
		string(fragment.Metadata.DocumentType),
		fragment.Metadata.Vendor,
		fragment.Metadata.Product,
		joinTechniques(fragment.Metadata.MITRETechniques),
		fragment.Metadata.SourcePath, fragment.Metadata.Title,
		lastUpdated, float32SliceToBytes(vector))

	if err != nil {
		return "", fmt.Errorf("saving fragment: %w", err)
	}
	return fragment.ID, nil
}

// Get retrieves a fragment by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Fragment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, document_type, vendor, product, techniques, source_path, title, last_updated
		FROM fragments WHERE id = ?
	`, id)

	var fragment domain.Fragment
	var documentType, techniques string
	var lastUpdated sql.NullTime
	if err := row.Scan(&fragment.ID, &fragment.Text, &documentType,
		&fragment.Metadata.Vendor, &fragment.Metadata.Product, &techniques,
		&fragment.Metadata.SourcePath, &fragment.Metadata.Title, &lastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning fragment: %w", err)
	}

	fragment.Metadata.DocumentType = domain.DocumentType(documentType)
	fragment.Metadata.MITRETechniques = splitTechniques(techniques)
	if lastUpdated.Valid {
		fragment.Metadata.LastUpdated = lastUpdated.Time
	}
	return &fragment, nil
}

// Delete removes a fragment.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM fragments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting fragment: %w", err)
	}
	return nil
}

// Count returns the number of stored fragments.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return count, nil
}

// SimilaritySearch scans embeddings of fragments matching the filters and
// returns the k most cosine-similar.
func (s *Store) SimilaritySearch(ctx context.Context, vector []float32, k int, filters domain.Filters) ([]driven.VectorHit, error) {
	query := "SELECT id, embedding FROM fragments WHERE embedding IS NOT NULL"
	args := []any{}
	query, args = appendFilterClause(query, args, "vendor", filters.Vendor)
	query, args = appendFilterClause(query, args, "product", filters.Product)
	query, args = appendFilterClause(query, args, "document_type", string(filters.DocumentType))
	// LIKE is case-insensitive for ASCII, so stored technique casing does
	// not matter.
	if filters.Technique != "" {
		query += " AND (',' || techniques || ',') LIKE ?"
		args = append(args, "%,"+filters.Technique+",%")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		hits = append(hits, driven.VectorHit{
			FragmentID: id,
			Similarity: cosineSimilarity(vector, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Dimensions returns the vector size this store was opened with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// appendFilterClause adds an equality predicate for a non-empty filter
// value. The filter columns are declared COLLATE NOCASE, so matching is
// case-insensitive without defeating their indexes.
func appendFilterClause(query string, args []any, column, value string) (string, []any) {
	if value == "" {
		return query, args
	}
	return query + " AND " + column + " = ?", append(args, value)
}

// joinTechniques stores technique IDs as a comma-joined list so a single
// LIKE predicate can filter on membership.
func joinTechniques(techniques []string) string {
	return strings.Join(techniques, ",")
}

func splitTechniques(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
