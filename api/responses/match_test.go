package responses

import (
	"fmt"
	"testing"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/stretchr/testify/assert"
)

func TestRoundProbability(t *testing.T) {
	assert.Equal(t, 0.8421, RoundProbability(0.842105263))
	assert.Equal(t, 0.1235, RoundProbability(0.12345))
	assert.Equal(t, 1.0, RoundProbability(0.99999))
	assert.Equal(t, 0.0, RoundProbability(0.00004))
}

func TestNewBulkMatchResponse(t *testing.T) {
	res := &screening.BulkResult{
		InputName: "JOHN SMITH",
		Decisions: []screening.MatchDecision{
			{EntityID: 7, MatchedName: "SMITH, John", Probability: 0.987654, IsMatch: true, Threshold: 0.5},
		},
	}
	body := NewBulkMatchResponse(res)
	assert.Equal(t, "JOHN SMITH", body.InputName)
	assert.Equal(t, MatchCandidate{EntNum: 7, OFACName: "SMITH, John", MatchProbability: 0.9877, IsMatch: true, Threshold: 0.5}, body.Candidates[0])

	empty := NewBulkMatchResponse(&screening.BulkResult{InputName: "X"})
	assert.NotNil(t, empty.Candidates)
	assert.Empty(t, empty.Candidates)
}

func TestNewAuditStatus(t *testing.T) {
	assert.Nil(t, NewAuditStatus(nil))
	assert.Equal(t, &AuditStatus{Error: "db down"}, NewAuditStatus(fmt.Errorf("db down")))
}
