package api

import (
	"net/http"
	"strconv"

	"github.com/Aidin1998/sanctions_matcher/api/responses"
	"github.com/Aidin1998/sanctions_matcher/common/apiutil"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/gin-gonic/gin"
)

const (
	modeThreshold = "threshold"
	modeTopN      = "top_n"
)

type matchRequest struct {
	Name1     string   `json:"name1" validate:"required"`
	Name2     string   `json:"name2" validate:"required"`
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

type bulkMatchRequest struct {
	InputName string   `json:"input_name" validate:"required"`
	Country   string   `json:"country"`
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=threshold top_n"`
	TopN      *int     `json:"top_n" validate:"omitempty,min=1"`
}

// bind decodes and validates the JSON body, writing a 400 problem on failure.
func (s *Server) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apiutil.RFC7807ValidationErrorResponse(c, "Request body is not valid JSON: "+err.Error())
		return false
	}
	if err := s.validator.Validate(req); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}

func (s *Server) threshold(t *float64) float64 {
	if t == nil {
		return s.screener.Config().Threshold
	}
	return *t
}

// statusFor returns 207 when the decision was computed but not recorded.
func statusFor(auditErr error) int {
	if auditErr != nil {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}

func (s *Server) predictMatch(c *gin.Context) {
	var req matchRequest
	if !s.bind(c, &req) {
		return
	}

	res, err := s.screener.Compare(c.Request.Context(), req.Name1, req.Name2, s.threshold(req.Threshold))
	if err != nil {
		_ = c.Error(err)
		return
	}

	body := responses.NewMatchResponse(res.Decision)
	body.Audit = responses.NewAuditStatus(res.AuditErr)
	c.JSON(statusFor(res.AuditErr), body)
}

func (s *Server) bulkMatch(c *gin.Context) {
	var req bulkMatchRequest
	if !s.bind(c, &req) {
		return
	}

	mode := screening.AllAboveThreshold()
	if req.Mode == modeTopN || (req.Mode == "" && req.TopN != nil) {
		n := s.screener.Config().DefaultTopN
		if req.TopN != nil {
			n = *req.TopN
		}
		mode = screening.TopN(n)
	}

	res, err := s.screener.BulkCompare(c.Request.Context(), screening.BulkRequest{
		InputName: req.InputName,
		Country:   req.Country,
		Threshold: s.threshold(req.Threshold),
		Mode:      mode,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	body := responses.NewBulkMatchResponse(res)
	body.Audit = responses.NewAuditStatus(res.AuditErr)
	c.JSON(statusFor(res.AuditErr), body)
}

func (s *Server) topMatch(c *gin.Context) {
	var req bulkMatchRequest
	if !s.bind(c, &req) {
		return
	}

	res, err := s.screener.TopMatch(c.Request.Context(), req.InputName, req.Country, s.threshold(req.Threshold))
	if err != nil {
		_ = c.Error(err)
		return
	}

	body := responses.NewMatchCandidate(res.Decision)
	body.Audit = responses.NewAuditStatus(res.AuditErr)
	c.JSON(statusFor(res.AuditErr), body)
}

func (s *Server) getMatches(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		_ = c.Error(errors.Invalid.Explain("query parameter name is required").
			WithField("required", "name", "is required"))
		return
	}

	records, err := s.screener.LookupSimilar(c.Request.Context(), name, c.Query("country"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, responses.NewSimilarSanctions(records))
}

func (s *Server) listPredictions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			_ = c.Error(errors.Invalid.Explain("limit must be an integer between 1 and 1000"))
			return
		}
		limit = n
	}

	rows, err := s.predictions.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, responses.NewPredictionLogEntries(rows))
}
