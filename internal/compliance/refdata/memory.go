package refdata

import (
	"context"
	"strings"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
)

// MemorySource serves a fixed reference list. It backs the CLI when no
// database is configured and is handy in tests.
type MemorySource struct {
	records []screening.ReferenceRecord
}

// NewMemorySource copies records and fills missing cleaned names.
func NewMemorySource(records []screening.ReferenceRecord) *MemorySource {
	out := make([]screening.ReferenceRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].CleanedName == "" {
			out[i].CleanedName = screening.Normalize(out[i].SDNName)
		}
	}
	return &MemorySource{records: out}
}

func (m *MemorySource) FetchAll(context.Context) ([]screening.ReferenceRecord, error) {
	out := make([]screening.ReferenceRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemorySource) FetchByCountry(_ context.Context, filter string) ([]screening.ReferenceRecord, error) {
	needle := strings.ToLower(filter)
	var out []screening.ReferenceRecord
	for _, r := range m.records {
		if strings.Contains(strings.ToLower(r.Country), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}
