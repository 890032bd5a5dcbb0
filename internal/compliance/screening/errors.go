package screening

import (
	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
)

// Error kinds of the screening pipeline. Match them with errors.Is.
var (
	// ErrInput: malformed or empty input that cannot be screened
	ErrInput = errors.Invalid.Reason("input_error")
	// ErrNoCandidates: top-N requested over an empty reference list
	ErrNoCandidates = errors.NotFound.Reason("no_candidates")
	// ErrNoMatches: lookup found nothing above the similarity cutoff
	ErrNoMatches = errors.NotFound.Reason("no_matches")
	// ErrScoring: the classifier could not score a comparison
	ErrScoring = errors.Internal.Reason("scoring_error")
	// ErrDataSource: the reference list is unavailable
	ErrDataSource = errors.Unavailable.Reason("data_source_error")
	// ErrAuditLog: a decision was computed but could not be recorded
	ErrAuditLog = errors.Internal.Reason("audit_log_error")
)
