// Package ingest loads documentation files into fragments and writes them
// to the search indexes. Documents are markdown or plain text with an
// optional TOML front-matter block carrying the catalogue metadata
// (vendor, product, document type, MITRE techniques).
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/siemdocs/docqa/internal/core/domain"
)

// DefaultFragmentSize is the target fragment size in characters.
const DefaultFragmentSize = 1200

// DefaultFragmentOverlap is the overlap between adjacent fragments.
const DefaultFragmentOverlap = 200

// frontMatterDelimiter separates the TOML metadata block from the body.
const frontMatterDelimiter = "+++"

// frontMatter is the metadata block at the top of a documentation file.
type frontMatter struct {
	Title        string   `toml:"title"`
	Vendor       string   `toml:"vendor"`
	Product      string   `toml:"product"`
	DocumentType string   `toml:"document_type"`
	Techniques   []string `toml:"techniques"`
}

// Loader reads documentation files and splits them into fragments.
type Loader struct {
	fragmentSize int
	overlap      int
}

// Option configures the loader.
type Option func(*Loader)

// WithFragmentSize sets the target fragment size in characters.
func WithFragmentSize(size int) Option {
	return func(l *Loader) {
		if size > 0 {
			l.fragmentSize = size
		}
	}
}

// WithOverlap sets the overlap between fragments in characters.
func WithOverlap(overlap int) Option {
	return func(l *Loader) {
		if overlap >= 0 {
			l.overlap = overlap
		}
	}
}

// NewLoader creates a loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		fragmentSize: DefaultFragmentSize,
		overlap:      DefaultFragmentOverlap,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.overlap >= l.fragmentSize {
		l.overlap = l.fragmentSize / 4
	}
	return l
}

// LoadDir walks root for .md and .txt files and returns their fragments.
// Paths in fragment metadata are relative to root.
func (l *Loader) LoadDir(root string) ([]domain.Fragment, error) {
	var fragments []domain.Fragment
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !supportedFile(path) {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			relative = path
		}
		loaded, err := l.LoadFile(path, relative)
		if err != nil {
			return fmt.Errorf("loading %s: %w", relative, err)
		}
		fragments = append(fragments, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

// LoadFile reads one documentation file and splits it into fragments.
// sourcePath is recorded in the fragment metadata and used for citation
// attribution and diversity grouping.
func (l *Loader) LoadFile(path, sourcePath string) ([]domain.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, err
	}

	metadata := domain.Metadata{
		DocumentType:    domain.DocumentType(strings.ToLower(meta.DocumentType)),
		Vendor:          meta.Vendor,
		Product:         meta.Product,
		MITRETechniques: meta.Techniques,
		SourcePath:      sourcePath,
		Title:           meta.Title,
	}
	if metadata.Title == "" {
		metadata.Title = extractTitle(body, sourcePath)
	}

	var fragments []domain.Fragment
	for _, text := range l.split(body) {
		fragments = append(fragments, domain.Fragment{
			ID:       uuid.NewString(),
			Text:     text,
			Metadata: metadata,
		})
	}
	return fragments, nil
}

// split cuts the body into overlapping fragments, preferring paragraph
// boundaries near the target size. Code fences are kept intact in the
// text: embedding-model routing depends on seeing them.
func (l *Loader) split(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if len(body) <= l.fragmentSize {
		return []string{body}
	}

	var fragments []string
	start := 0
	for start < len(body) {
		end := start + l.fragmentSize
		if end >= len(body) {
			fragments = append(fragments, strings.TrimSpace(body[start:]))
			break
		}

		// Prefer to cut at the last paragraph break inside the window,
		// as long as it keeps the fragment reasonably sized.
		cut := end
		if idx := strings.LastIndex(body[start:end], "\n\n"); idx > l.fragmentSize/2 {
			cut = start + idx
		}

		fragment := strings.TrimSpace(body[start:cut])
		if fragment != "" {
			fragments = append(fragments, fragment)
		}

		// Advance, keeping the overlap but never moving backwards.
		next := cut - l.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return fragments
}

// splitFrontMatter separates an optional +++ delimited TOML block from the
// document body.
func splitFrontMatter(content string) (frontMatter, string, error) {
	var meta frontMatter
	trimmed := strings.TrimLeft(content, "\ufeff\n\r ")
	if !strings.HasPrefix(trimmed, frontMatterDelimiter) {
		return meta, content, nil
	}

	rest := trimmed[len(frontMatterDelimiter):]
	closing := strings.Index(rest, "\n"+frontMatterDelimiter)
	if closing < 0 {
		return meta, content, fmt.Errorf("unterminated front matter: %w", domain.ErrInvalidInput)
	}

	block := rest[:closing]
	if err := toml.Unmarshal([]byte(block), &meta); err != nil {
		return meta, content, fmt.Errorf("parsing front matter: %w", err)
	}

	body := rest[closing+len(frontMatterDelimiter)+1:]
	return meta, body, nil
}

// extractTitle finds the first markdown H1 heading or falls back to a
// humanised filename.
func extractTitle(body, sourcePath string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	name := filepath.Base(sourcePath)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	default:
		return false
	}
}
