package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/core/domain"
)

func newTestProcessor() *QueryProcessor {
	return NewQueryProcessor(domain.DefaultRetrievalSettings())
}

func TestQueryProcessor_DetectType(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected domain.QueryType
	}{
		{
			name:     "how-to is troubleshooting",
			query:    "How do I configure syslog forwarding on FortiGate?",
			expected: domain.QueryTroubleshooting,
		},
		{
			name:     "event id reference is technical",
			query:    "What event ID is used for password reset in Active Directory?",
			expected: domain.QueryTechnical,
		},
		{
			name:     "mitre technique id is technical",
			query:    "detections for T1110.003",
			expected: domain.QueryTechnical,
		},
		{
			name:     "parser question is technical",
			query:    "parser field mapping for PAN-OS traffic logs",
			expected: domain.QueryTechnical,
		},
		{
			name:     "what-is is terminology",
			query:    "What is an indicator of compromise?",
			expected: domain.QueryTerminology,
		},
		{
			name:     "bare product name is terminology",
			query:    "Cortex XDR",
			expected: domain.QueryTerminology,
		},
		{
			name:     "difference question is conceptual",
			query:    "difference between EDR and antivirus",
			expected: domain.QueryConceptual,
		},
		{
			name:     "unclassifiable falls back to general",
			query:    "password reset audit trail",
			expected: domain.QueryGeneral,
		},
		{
			name:     "troubleshooting beats technical on tie",
			query:    "how to fix parser errors for event id 4688",
			expected: domain.QueryTroubleshooting,
		},
	}

	p := newTestProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := p.Process(tt.query, domain.Filters{})
			assert.Equal(t, tt.expected, q.Type)
		})
	}
}

func TestQueryProcessor_ExtractFilters(t *testing.T) {
	p := newTestProcessor()

	t.Run("product mention sets product and vendor", func(t *testing.T) {
		q := p.Process("password reset events in Active Directory", domain.Filters{})
		assert.Equal(t, "active directory", q.Filters.Product)
		assert.Equal(t, "Microsoft", q.Filters.Vendor)
	})

	t.Run("vendor mention without product sets vendor only", func(t *testing.T) {
		q := p.Process("Fortinet log forwarding", domain.Filters{})
		assert.Equal(t, "Fortinet", q.Filters.Vendor)
		assert.Empty(t, q.Filters.Product)
	})

	t.Run("technique id extracted uppercase", func(t *testing.T) {
		q := p.Process("coverage for t1110.003 brute force", domain.Filters{})
		assert.Equal(t, "T1110.003", q.Filters.Technique)
	})

	t.Run("explicit filters win over extracted", func(t *testing.T) {
		q := p.Process("password reset in Active Directory", domain.Filters{Vendor: "Cisco"})
		assert.Equal(t, "Cisco", q.Filters.Vendor)
		// The extracted product survives; only the conflicting field is
		// overridden.
		assert.Equal(t, "active directory", q.Filters.Product)
	})

	t.Run("no known names yields empty filters", func(t *testing.T) {
		q := p.Process("generic log retention question", domain.Filters{})
		assert.True(t, q.Filters.IsZero())
	})
}

func TestQueryProcessor_Expansion(t *testing.T) {
	p := newTestProcessor()

	t.Run("synonyms appended for matched terms", func(t *testing.T) {
		q := p.Process("brute force detection", domain.Filters{})
		assert.Contains(t, q.ExpandedTerms, "password guessing")
		assert.Contains(t, q.ExpandedTerms, "credential stuffing")
	})

	t.Run("expansion capped", func(t *testing.T) {
		settings := domain.DefaultRetrievalSettings()
		settings.MaxExpansionTerms = 2
		capped := NewQueryProcessor(settings)

		q := capped.Process("brute force lateral movement persistence phishing", domain.Filters{})
		assert.Len(t, q.ExpandedTerms, 2)
	})

	t.Run("terms already in query not repeated", func(t *testing.T) {
		q := p.Process("ad active directory", domain.Filters{})
		assert.NotContains(t, q.ExpandedTerms, "active directory")
	})

	t.Run("expansion is deterministic", func(t *testing.T) {
		first := p.Process("brute force and lateral movement", domain.Filters{})
		second := p.Process("brute force and lateral movement", domain.Filters{})
		assert.Equal(t, first.ExpandedTerms, second.ExpandedTerms)
	})
}

func TestQueryProcessor_SearchText(t *testing.T) {
	p := newTestProcessor()

	q := p.Process("brute force alerts", domain.Filters{})
	require.NotEmpty(t, q.ExpandedTerms)
	assert.Contains(t, q.SearchText(), "brute force alerts")
	assert.Contains(t, q.SearchText(), q.ExpandedTerms[0])
}

func TestQueryProcessor_EmptyQuery(t *testing.T) {
	p := newTestProcessor()

	q := p.Process("   ", domain.Filters{})
	assert.Empty(t, q.RawText)
	assert.Equal(t, domain.QueryGeneral, q.Type)
	assert.Empty(t, q.ExpandedTerms)
}
