package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/core/domain"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_FrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "events.md", `+++
title = "AD Account Events"
vendor = "Microsoft"
product = "Active Directory"
document_type = "data_source"
techniques = ["T1098", "T1110.003"]
+++

Event ID 4724 is generated on password reset attempts.
`)

	loader := NewLoader()
	fragments, err := loader.LoadFile(path, "events.md")
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	f := fragments[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Event ID 4724 is generated on password reset attempts.", f.Text)
	assert.Equal(t, "AD Account Events", f.Metadata.Title)
	assert.Equal(t, "Microsoft", f.Metadata.Vendor)
	assert.Equal(t, "Active Directory", f.Metadata.Product)
	assert.Equal(t, domain.DocTypeDataSource, f.Metadata.DocumentType)
	assert.Equal(t, []string{"T1098", "T1110.003"}, f.Metadata.MITRETechniques)
	assert.Equal(t, "events.md", f.Metadata.SourcePath)
}

func TestLoadFile_NoFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "guide.md", "# Hunting Guide\n\nRun queries across log sources.\n")

	fragments, err := NewLoader().LoadFile(path, "guide.md")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "Hunting Guide", fragments[0].Metadata.Title)
	assert.Empty(t, fragments[0].Metadata.Vendor)
}

func TestLoadFile_TitleFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "asa-syslog_setup.txt", "Forward syslog to the collector.\n")

	fragments, err := NewLoader().LoadFile(path, "asa-syslog_setup.txt")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "asa syslog setup", fragments[0].Metadata.Title)
}

func TestLoadFile_UnterminatedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "bad.md", "+++\ntitle = \"Broken\"\n\nNo closing delimiter.\n")

	_, err := NewLoader().LoadFile(path, "bad.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSplit_SmallBodySingleFragment(t *testing.T) {
	loader := NewLoader(WithFragmentSize(100), WithOverlap(20))
	fragments := loader.split("short body")
	assert.Equal(t, []string{"short body"}, fragments)
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("alpha ", 20)  // ~120 chars
	para2 := strings.Repeat("beta ", 20)   // ~100 chars
	para3 := strings.Repeat("gamma ", 20)  // ~120 chars
	body := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2) + "\n\n" + strings.TrimSpace(para3)

	loader := NewLoader(WithFragmentSize(150), WithOverlap(0))
	fragments := loader.split(body)
	require.NotEmpty(t, fragments)
	assert.Equal(t, strings.TrimSpace(para1), fragments[0])
}

func TestSplit_CoversWholeBody(t *testing.T) {
	body := strings.Repeat("lorem ipsum dolor sit amet ", 200)
	loader := NewLoader(WithFragmentSize(300), WithOverlap(50))

	fragments := loader.split(body)
	require.Greater(t, len(fragments), 1)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), fragments[0][:20]))
	last := fragments[len(fragments)-1]
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), last[len(last)-20:]))
}

func TestSplit_AlwaysTerminates(t *testing.T) {
	// Overlap close to the fragment size must not stall the cursor.
	body := strings.Repeat("x", 5000)
	loader := NewLoader(WithFragmentSize(100), WithOverlap(99))

	fragments := loader.split(body)
	assert.NotEmpty(t, fragments)
}

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, NewLoader().split("   \n  "))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", "# A\n\nContent for A.\n")
	writeDoc(t, dir, "sub/b.txt", "Content for B.\n")
	writeDoc(t, dir, "ignored.yaml", "not: loaded\n")

	fragments, err := NewLoader().LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	paths := []string{fragments[0].Metadata.SourcePath, fragments[1].Metadata.SourcePath}
	assert.Contains(t, paths, "a.md")
	assert.Contains(t, paths, filepath.Join("sub", "b.txt"))
}
