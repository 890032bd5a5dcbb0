package responses

import (
	"time"

	"github.com/Aidin1998/sanctions_matcher/internal/audit"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/shopspring/decimal"
)

// ProbabilityPlaces is the precision of probabilities in responses.
const ProbabilityPlaces = 4

// RoundProbability rounds p half away from zero to ProbabilityPlaces.
func RoundProbability(p float64) float64 {
	return decimal.NewFromFloat(p).Round(ProbabilityPlaces).InexactFloat64()
}

// AuditStatus is attached when a decision could not be recorded.
type AuditStatus struct {
	Recorded bool   `json:"recorded"`
	Error    string `json:"error,omitempty"`
}

// MatchResponse is the verdict of a single comparison.
type MatchResponse struct {
	MatchProbability float64      `json:"match_probability"`
	IsMatch          bool         `json:"is_match"`
	Threshold        float64      `json:"threshold"`
	MatchedName      string       `json:"matched_name,omitempty"`
	Audit            *AuditStatus `json:"audit,omitempty"`
}

// MatchCandidate is one ranked reference record.
type MatchCandidate struct {
	EntNum           int64        `json:"ent_num"`
	OFACName         string       `json:"ofac_name"`
	MatchProbability float64      `json:"match_probability"`
	IsMatch          bool         `json:"is_match"`
	Threshold        float64      `json:"threshold"`
	Audit            *AuditStatus `json:"audit,omitempty"`
}

// BulkMatchResponse lists candidates in descending probability.
type BulkMatchResponse struct {
	InputName  string           `json:"input_name"`
	Candidates []MatchCandidate `json:"candidates"`
	Audit      *AuditStatus     `json:"audit,omitempty"`
}

// SimilarSanction is a lookup hit.
type SimilarSanction struct {
	EntNum      int64   `json:"ent_num"`
	SDNName     string  `json:"sdn_name"`
	SDNType     string  `json:"sdn_type"`
	Country     string  `json:"country"`
	CleanedName string  `json:"cleaned_name"`
	FuzzRatio   float64 `json:"fuzz_ratio"`
}

// PredictionLogEntry is a recorded decision.
type PredictionLogEntry struct {
	ID          string    `json:"id"`
	InputText   string    `json:"input_text"`
	Name        string    `json:"name"`
	Probability float64   `json:"probability"`
	IsMatch     bool      `json:"is_match"`
	Threshold   float64   `json:"threshold"`
	SourceRoute string    `json:"source_route"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewMatchResponse(d screening.MatchDecision) MatchResponse {
	return MatchResponse{
		MatchProbability: RoundProbability(d.Probability),
		IsMatch:          d.IsMatch,
		Threshold:        d.Threshold,
		MatchedName:      d.MatchedName,
	}
}

func NewMatchCandidate(d screening.MatchDecision) MatchCandidate {
	return MatchCandidate{
		EntNum:           d.EntityID,
		OFACName:         d.MatchedName,
		MatchProbability: RoundProbability(d.Probability),
		IsMatch:          d.IsMatch,
		Threshold:        d.Threshold,
	}
}

func NewBulkMatchResponse(res *screening.BulkResult) BulkMatchResponse {
	candidates := make([]MatchCandidate, len(res.Decisions))
	for i, d := range res.Decisions {
		candidates[i] = NewMatchCandidate(d)
	}
	return BulkMatchResponse{InputName: res.InputName, Candidates: candidates}
}

func NewSimilarSanctions(records []screening.SimilarRecord) []SimilarSanction {
	out := make([]SimilarSanction, len(records))
	for i, r := range records {
		out[i] = SimilarSanction{
			EntNum:      r.EntNum,
			SDNName:     r.SDNName,
			SDNType:     r.SDNType,
			Country:     r.Country,
			CleanedName: r.CleanedName,
			FuzzRatio:   r.FuzzRatio,
		}
	}
	return out
}

// NewAuditStatus returns nil when err is nil.
func NewAuditStatus(err error) *AuditStatus {
	if err == nil {
		return nil
	}
	return &AuditStatus{Recorded: false, Error: err.Error()}
}

func NewPredictionLogEntries(rows []audit.PredictionLog) []PredictionLogEntry {
	out := make([]PredictionLogEntry, len(rows))
	for i, r := range rows {
		out[i] = PredictionLogEntry{
			ID:          r.ID.String(),
			InputText:   r.InputText,
			Name:        r.Name,
			Probability: RoundProbability(r.Probability),
			IsMatch:     r.IsMatch,
			Threshold:   r.Threshold,
			SourceRoute: r.SourceRoute,
			RequestID:   r.RequestID,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out
}
