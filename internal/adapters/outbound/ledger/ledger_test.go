package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/ledger"
	"github.com/a11yfix/a11yfix/internal/domain"
)

func TestLedger_RecordAndLoad(t *testing.T) {
	dir := t.TempDir()
	l := ledger.New()

	entry := domain.LedgerEntry{
		Fingerprint: "abc",
		File:        "index.html",
		Element:     "header img.logo",
		AppliedAt:   "2026-10-01T10:00:00Z",
	}
	require.NoError(t, l.Record(dir, entry))

	entries, err := l.Applied(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries["abc"])
}

func TestLedger_RecordMultiple(t *testing.T) {
	dir := t.TempDir()
	l := ledger.New()

	require.NoError(t, l.Record(dir, domain.LedgerEntry{Fingerprint: "a", File: "a.html", AppliedAt: "t1"}))
	require.NoError(t, l.Record(dir, domain.LedgerEntry{Fingerprint: "b", File: "b.html", AppliedAt: "t2"}))
	require.NoError(t, l.Record(dir, domain.LedgerEntry{Fingerprint: "a", File: "a.html", AppliedAt: "t3"}))

	entries, err := l.Applied(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t3", entries["a"].AppliedAt)
}

func TestLedger_LoadEmpty(t *testing.T) {
	entries, err := ledger.New().Applied(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ledger.New().Record(dir, domain.LedgerEntry{Fingerprint: "x"}))

	_, err := os.Stat(filepath.Join(dir, ".a11yfix", "applied.json"))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".a11yfix", "applied.json"), ledger.Path(dir))
}

func TestLedger_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".a11yfix"), 0755))
	require.NoError(t, os.WriteFile(ledger.Path(dir), []byte("{nope"), 0644))

	_, err := ledger.New().Applied(dir)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}
