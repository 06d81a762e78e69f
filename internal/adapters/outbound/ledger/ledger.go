package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/fsutil"
)

const ledgerFile = ".a11yfix/applied.json"

// FileLedger implements domain.FixLedger using a JSON file inside the source tree.
type FileLedger struct{}

func New() *FileLedger {
	return &FileLedger{}
}

// Path returns the ledger location for a source root.
func Path(root string) string {
	return filepath.Join(root, ledgerFile)
}

func (l *FileLedger) Record(root string, entry domain.LedgerEntry) error {
	entries, err := l.Applied(root)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = map[string]domain.LedgerEntry{}
	}
	entries[entry.Fingerprint] = entry

	list := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AppliedAt != list[j].AppliedAt {
			return list[i].AppliedAt < list[j].AppliedAt
		}
		return list[i].Fingerprint < list[j].Fingerprint
	})

	fp := Path(root)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return fmt.Errorf("%w: creating ledger directory: %w", domain.ErrIOFailure, err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	if err := fsutil.WriteFile(fp, data, 0644); err != nil {
		return fmt.Errorf("%w: writing ledger: %w", domain.ErrIOFailure, err)
	}
	return nil
}

func (l *FileLedger) Applied(root string) (map[string]domain.LedgerEntry, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading ledger: %w", domain.ErrIOFailure, err)
	}

	var list []domain.LedgerEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrMalformedInput, ledgerFile, err)
	}

	entries := make(map[string]domain.LedgerEntry, len(list))
	for _, e := range list {
		entries[e.Fingerprint] = e
	}
	return entries, nil
}
