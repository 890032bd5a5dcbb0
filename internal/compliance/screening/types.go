// Package screening implements the sanctions name-matching pipeline: name
// normalization, similarity feature extraction, classifier scoring, single-pair
// matching and bulk ranking over a reference list.
package screening

import "context"

// ReferenceRecord is a sanctioned entity row from the reference list.
// CleanedName holds the precomputed normalized form of SDNName.
type ReferenceRecord struct {
	EntNum      int64  `json:"ent_num"`
	SDNName     string `json:"sdn_name"`
	SDNType     string `json:"sdn_type"`
	Country     string `json:"country"`
	CleanedName string `json:"cleaned_name"`
}

// MatchDecision is the outcome of one comparison. It is never mutated after creation.
type MatchDecision struct {
	EntityID    int64   `json:"ent_num,omitempty"`
	MatchedName string  `json:"matched_name"`
	Probability float64 `json:"probability"`
	IsMatch     bool    `json:"is_match"`
	Threshold   float64 `json:"threshold"`
}

// AuditRecord is one decision as persisted for compliance traceability.
type AuditRecord struct {
	InputName       string
	MatchedName     string
	Probability     float64
	IsMatch         bool
	Threshold       float64
	SourceOperation string
}

// ReferenceSource supplies the current sanctions list.
type ReferenceSource interface {
	FetchAll(ctx context.Context) ([]ReferenceRecord, error)
	// FetchByCountry returns records whose country contains filter, case-insensitively.
	FetchByCountry(ctx context.Context, filter string) ([]ReferenceRecord, error)
}

// AuditLogger durably records decisions returned to clients.
type AuditLogger interface {
	Record(ctx context.Context, rec AuditRecord) error
}

// ScoringModel is a pre-trained binary classifier. Implementations must be safe
// for concurrent use.
type ScoringModel interface {
	// PredictProba returns the positive-class probability for a feature row
	// laid out in FeatureNames order.
	PredictProba(features []float64) (float64, error)
	NumFeatures() int
}

// NamedModel is implemented by models that declare their input columns.
type NamedModel interface {
	FeatureNames() []string
}

// Operation names recorded with audit entries.
const (
	OpCompare = "predict_match"
	OpBulk    = "predict_match/bulk"
	OpTop     = "predict_match/top"
	OpLookup  = "matches"
)
