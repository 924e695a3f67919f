package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/resellkit/pricing/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	catalog, err := Load(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)

	rule, err := catalog.TariffFor("9503.00.00", "CN")
	require.NoError(t, err)
	assert.InDelta(t, 0.065+0.25, rule.TotalRate(), 1e-9)

	fees, err := catalog.FeesFor(pricing.TierPremium)
	require.NoError(t, err)
	assert.InDelta(t, 0.1315-0.06, fees.FinalFVFRate(), 1e-9)

	d, ok := catalog.DivisorFor("jppost")
	assert.True(t, ok)
	assert.InDelta(t, 6000, d, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing catalog")
}

func TestLoad_RejectsEmptyFeeSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tariffs":[],"fee_schedules":[],"carriers":[]}`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "no fee schedules")
}

func TestLoad_RejectsTariffWithoutKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{
		"tariffs": [{"base_rate": 0.05}],
		"fee_schedules": [{"tier": "none", "base_fvf_rate": 0.1315}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "missing hs_code")
}
