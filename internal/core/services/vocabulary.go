package services

import "regexp"

// Static reference vocabulary for query understanding. The tables are
// deliberately small and hand-curated: they cover the vendors, products,
// and domain terms that appear in the indexed documentation corpus.

// techniquePattern matches MITRE ATT&CK technique IDs such as T1110 or
// T1110.003.
var techniquePattern = regexp.MustCompile(`\bT\d{4}(?:\.\d{3})?\b`)

// eventIDPattern matches Windows-style numeric event IDs in context,
// e.g. "event id 4724" or "event 4624".
var eventIDPattern = regexp.MustCompile(`(?i)\bevent\s+(?:id\s+)?\d{3,5}\b`)

// knownProducts maps lower-cased product names to their vendor. Product
// mentions in query text become implicit vendor+product filters.
var knownProducts = map[string]string{
	"active directory":  "Microsoft",
	"defender":          "Microsoft",
	"sentinel":          "Microsoft",
	"exchange online":   "Microsoft",
	"entra id":          "Microsoft",
	"asa":               "Cisco",
	"firepower":         "Cisco",
	"umbrella":          "Cisco",
	"meraki":            "Cisco",
	"pan-os":            "Palo Alto Networks",
	"cortex xdr":        "Palo Alto Networks",
	"falcon":            "CrowdStrike",
	"fortigate":         "Fortinet",
	"qradar":            "IBM",
	"carbon black":      "VMware",
	"guardduty":         "AWS",
	"cloudtrail":        "AWS",
	"okta":              "Okta",
	"crowdstrike":       "CrowdStrike",
	"zscaler":           "Zscaler",
	"proofpoint":        "Proofpoint",
}

// knownVendors is the set of lower-cased vendor names recognised as
// implicit vendor filters.
var knownVendors = map[string]string{
	"microsoft":          "Microsoft",
	"cisco":              "Cisco",
	"palo alto":          "Palo Alto Networks",
	"palo alto networks": "Palo Alto Networks",
	"crowdstrike":        "CrowdStrike",
	"fortinet":           "Fortinet",
	"ibm":                "IBM",
	"vmware":             "VMware",
	"aws":                "AWS",
	"okta":               "Okta",
	"zscaler":            "Zscaler",
	"proofpoint":         "Proofpoint",
}

// synonyms maps lower-cased terms to domain expansions. Matches are
// appended to a query's expansion list in match order, capped by
// RetrievalSettings.MaxExpansionTerms.
var synonyms = map[string][]string{
	"ad":                   {"active directory"},
	"active directory":     {"domain controller"},
	"dc":                   {"domain controller"},
	"gpo":                  {"group policy"},
	"mfa":                  {"multi-factor authentication"},
	"sso":                  {"single sign-on"},
	"edr":                  {"endpoint detection and response"},
	"siem":                 {"security information and event management"},
	"soar":                 {"security orchestration"},
	"ioc":                  {"indicator of compromise"},
	"ttp":                  {"tactics techniques and procedures"},
	"lateral movement":     {"remote services", "pass the hash"},
	"brute force":          {"password guessing", "credential stuffing"},
	"privilege escalation": {"elevation of privilege"},
	"persistence":          {"scheduled task", "registry run key"},
	"exfiltration":         {"data transfer"},
	"phishing":             {"spearphishing"},
	"c2":                   {"command and control"},
	"vpn":                  {"remote access"},
	"dns":                  {"domain name system"},
}

// Keyword sets for rule-based query type detection. Ties are broken by a
// fixed priority: troubleshooting > technical > terminology > conceptual >
// general.
var (
	troubleshootingMarkers = []string{
		"how do i", "how to", "configure", "set up", "setup",
		"install", "enable", "disable", "fix", "troubleshoot",
		"not working", "failing", "error when",
	}

	technicalMarkers = []string{
		"event id", "parser", "field name", "field mapping", "regex",
		"log format", "syntax", "raw log", "grok",
	}

	terminologyMarkers = []string{
		"what is", "what are", "what does", "define", "definition of",
		"meaning of", "stand for",
	}

	conceptualMarkers = []string{
		"why", "difference between", "compare", "comparison",
		"best practice", "overview", "explain", "when should",
	}
)

// stopWords are filler tokens skipped during synonym lookup and term
// overlap scoring.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "for": true, "with": true, "by": true, "of": true,
	"to": true, "is": true, "are": true, "was": true, "be": true,
	"and": true, "or": true, "it": true, "this": true, "that": true,
	"what": true, "which": true, "how": true, "do": true, "does": true,
	"i": true, "we": true, "used": true, "use": true,
}
