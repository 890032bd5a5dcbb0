package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aidin1998/sanctions_matcher/api/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sanctionsCSV = `ent_num,sdn_name,sdn_type,country
36,ALICE JONES,individual,-0-
173,JON SMYTH,individual,Cuba
306,JOHN SMITH,individual,Iran
`

const modelYAML = `features: [fuzz_ratio, token_sort_ratio, length_diff, common_token_count, prefix_match, word_count_1, word_count_2]
coefficients: [0.061, 0.083, -0.118, 0.642, 0.914, -0.207, -0.195]
intercept: -10.9
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)

	modelFile := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(modelFile, []byte(modelYAML), 0o600))
	csvFile := filepath.Join(dir, "sdn.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte(sanctionsCSV), 0o600))

	t.Setenv("SANCTIONS_DATABASE_DRIVER", "sqlite")
	t.Setenv("SANCTIONS_DATABASE_DSN", filepath.Join(dir, "sanctions.db"))
	t.Setenv("SANCTIONS_MODEL_PATH", modelFile)
	return csvFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMatchctl_SeedCompareBulkAudit(t *testing.T) {
	csvFile := setupEnv(t)

	out, err := run(t, "seed", "-q", csvFile)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 3 records (3 in table)")

	out, err = run(t, "compare", "-o", "json", "John Smith", "Jon Smyth")
	require.NoError(t, err)
	var match responses.MatchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &match))
	assert.True(t, match.IsMatch)
	assert.InDelta(t, 0.5755, match.MatchProbability, 1e-3)
	assert.Equal(t, 0.5, match.Threshold)

	out, err = run(t, "bulk", "John Smith")
	require.NoError(t, err)
	assert.Contains(t, out, "JOHN SMITH")
	assert.Contains(t, out, "JON SMYTH")
	assert.NotContains(t, out, "ALICE JONES")

	out, err = run(t, "bulk", "-o", "json", "--top", "1", "--country", "iran", "John Smith")
	require.NoError(t, err)
	var bulk responses.BulkMatchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &bulk))
	require.Len(t, bulk.Candidates, 1)
	assert.Equal(t, int64(306), bulk.Candidates[0].EntNum)

	out, err = run(t, "audit", "-o", "json", "--limit", "10")
	require.NoError(t, err)
	var entries []responses.PredictionLogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 4)
}

func TestMatchctl_Threshold(t *testing.T) {
	csvFile := setupEnv(t)
	_, err := run(t, "seed", "-q", csvFile)
	require.NoError(t, err)

	out, err := run(t, "compare", "--threshold", "0.9", "John Smith", "Jon Smyth")
	require.NoError(t, err)
	assert.Contains(t, out, "no match")
	assert.Contains(t, out, "threshold=0.90")
}

func TestMatchctl_Lookup(t *testing.T) {
	csvFile := setupEnv(t)
	_, err := run(t, "seed", "-q", csvFile)
	require.NoError(t, err)

	out, err := run(t, "lookup", "-o", "json", "Smith John")
	require.NoError(t, err)
	var hits []responses.SimilarSanction
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "JOHN SMITH", hits[0].SDNName)
}

func TestMatchctl_MigrateWithoutModel(t *testing.T) {
	setupEnv(t)
	t.Setenv("SANCTIONS_MODEL_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	_, err = run(t, "compare", "a", "b")
	assert.Error(t, err)
}

func TestMatchctl_InvalidOutput(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "compare", "-o", "yaml", "a", "b")
	assert.ErrorContains(t, err, "invalid output format")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}
