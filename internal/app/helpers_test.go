package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// modelPath writes a logistic model that puts JON SMYTH above 0.5 for
// JOHN SMITH and ALICE JONES below it.
func modelPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	doc := `features: [fuzz_ratio, token_sort_ratio, length_diff, common_token_count, prefix_match, word_count_1, word_count_2]
coefficients: [0.061, 0.083, -0.118, 0.642, 0.914, -0.207, -0.195]
intercept: -10.9
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
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
