package services

import (
	"fmt"
	"strings"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/logger"
)

// entrySeparator joins rendered fragments in the context block.
const entrySeparator = "\n\n"

// Assemble selects a final ordered subset of fragments under a character
// budget, builds the citation list, and renders the prompt-ready context
// block. Inclusion is greedy in input order: assembly stops at the first
// fragment whose rendered entry would push the block over budget.
//
// Rendering is deterministic: the same fragments in the same order produce
// byte-identical output, which keeps prompts and any caching of model
// responses reproducible.
func Assemble(diversified []domain.ScoredFragment, budget int) domain.ContextBlock {
	logger.Section("Context Assembly")
	if budget <= 0 {
		budget = domain.DefaultRetrievalSettings().ContextBudget
	}

	var (
		entries   []string
		block     domain.ContextBlock
		totalSize int
	)

	for _, sf := range diversified {
		marker := len(block.Fragments) + 1
		entry := renderEntry(marker, sf.Fragment)

		size := len(entry)
		if len(entries) > 0 {
			size += len(entrySeparator)
		}
		if totalSize+size > budget {
			block.Truncated = true
			logger.Debug("Budget reached at fragment %s (%d/%d chars), stopping",
				sf.Fragment.ID, totalSize, budget)
			break
		}

		totalSize += size
		entries = append(entries, entry)
		block.Fragments = append(block.Fragments, sf)
		block.Citations = append(block.Citations, domain.Citation{
			Marker:     marker,
			SourcePath: sf.Fragment.Metadata.SourcePath,
			Title:      sf.Fragment.Metadata.Title,
			Vendor:     sf.Fragment.Metadata.Vendor,
			Product:    sf.Fragment.Metadata.Product,
		})
	}

	block.Text = strings.Join(entries, entrySeparator)
	logger.Info("Assembled %d fragments, %d chars, truncated=%t",
		len(block.Fragments), len(block.Text), block.Truncated)
	return block
}

// renderEntry renders one fragment with its citation marker. The format is
// an implementation choice but must stay stable; downstream prompt caching
// depends on it.
func renderEntry(marker int, f domain.Fragment) string {
	return fmt.Sprintf("[%d] %s\n%s", marker, attribution(f), f.Text)
}

// attribution builds the one-line source description for a fragment
// header, e.g. "docs/ad/events.md (Microsoft Active Directory)".
func attribution(f domain.Fragment) string {
	source := f.Metadata.Title
	if source == "" {
		source = f.Metadata.SourcePath
	}
	if source == "" {
		source = f.ID
	}

	var origin []string
	if f.Metadata.Vendor != "" {
		origin = append(origin, f.Metadata.Vendor)
	}
	if f.Metadata.Product != "" {
		origin = append(origin, f.Metadata.Product)
	}
	if len(origin) == 0 {
		return source
	}
	return fmt.Sprintf("%s (%s)", source, strings.Join(origin, " "))
}
