package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/fsutil"
)

// Keys owned by this tool. Everything else in a report is passed through.
const (
	keyURL               = "url"
	keyIssues            = "issues"
	keyApprovedFixes     = "approvedFixes"
	keyValidationResults = "validationResults"
)

// JSONStore implements domain.ReportStore over JSON files.
type JSONStore struct{}

func New() *JSONStore {
	return &JSONStore{}
}

// Load reads the report at path. Keys the tool does not own are kept in
// Report.Extra so Save can write them back unchanged.
func (s *JSONStore) Load(path string) (*domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading report %s: %w", domain.ErrIOFailure, path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing report %s: %w", domain.ErrMalformedInput, path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: report %s is not a JSON object", domain.ErrMalformedInput, path)
	}

	r := &domain.Report{Path: path, Issues: []domain.Issue{}}
	if err := decodeKey(raw, keyURL, &r.URL); err != nil {
		return nil, malformed(path, err)
	}
	if err := decodeKey(raw, keyIssues, &r.Issues); err != nil {
		return nil, malformed(path, err)
	}
	if isSet(raw, keyApprovedFixes) {
		r.HasApprovedFixes = true
		if err := decodeKey(raw, keyApprovedFixes, &r.ApprovedFixes); err != nil {
			return nil, malformed(path, err)
		}
	}
	if isSet(raw, keyValidationResults) {
		r.ValidationResults = &domain.ValidationResults{}
		if err := decodeKey(raw, keyValidationResults, r.ValidationResults); err != nil {
			return nil, malformed(path, err)
		}
	}

	for _, k := range []string{keyURL, keyIssues, keyApprovedFixes, keyValidationResults} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		r.Extra = raw
	}
	return r, nil
}

// Save writes the report back to r.Path atomically, keeping the file's mode.
func (s *JSONStore) Save(r *domain.Report) error {
	if r.Path == "" {
		return fmt.Errorf("%w: report has no path", domain.ErrIOFailure)
	}

	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.URL != "" {
		out[keyURL] = r.URL
	}
	issues := r.Issues
	if issues == nil {
		issues = []domain.Issue{}
	}
	out[keyIssues] = issues
	if r.HasApprovedFixes || len(r.ApprovedFixes) > 0 {
		approved := r.ApprovedFixes
		if approved == nil {
			approved = []domain.Issue{}
		}
		out[keyApprovedFixes] = approved
	}
	if r.ValidationResults != nil {
		out[keyValidationResults] = r.ValidationResults
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(r.Path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsutil.WriteFile(r.Path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("%w: writing report %s: %w", domain.ErrIOFailure, r.Path, err)
	}
	return nil
}

func decodeKey(raw map[string]json.RawMessage, key string, into any) error {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil
	}
	if err := json.Unmarshal(v, into); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func isSet(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && !isNull(v)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func malformed(path string, err error) error {
	return fmt.Errorf("%w: report %s: %w", domain.ErrMalformedInput, path, err)
}
