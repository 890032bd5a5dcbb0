package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aidin1998/sanctions_matcher/api"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("SANCTIONS_DATABASE_DRIVER", "sqlite")
	t.Setenv("SANCTIONS_DATABASE_DSN", "file::memory:")
	cfg, err := config.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	return cfg
}

func TestNew_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Path = modelPath(t)

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Migrate())

	ctx := context.Background()
	require.NoError(t, a.References.Upsert(ctx, []screening.ReferenceRecord{
		{EntNum: 1, SDNName: "ALICE JONES"},
		{EntNum: 2, SDNName: "JON SMYTH"},
		{EntNum: 3, SDNName: "JOHN SMITH"},
	}))

	res, err := a.Service.BulkCompare(ctx, screening.BulkRequest{InputName: "John Smith", Threshold: 0.5, Mode: screening.AllAboveThreshold()})
	require.NoError(t, err)
	require.NoError(t, res.AuditErr)
	require.Len(t, res.Decisions, 2)
	assert.Equal(t, "JOHN SMITH", res.Decisions[0].MatchedName)

	logged, err := a.Audit.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logged, 2)

	assert.NoError(t, a.InvalidateCache(ctx))

	server := api.NewServer(zap.NewNop(), a.Service, api.Options{HealthChecks: a.HealthChecks()})
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_ModelMissingIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Path = "does/not/exist.yaml"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "load model")
}
