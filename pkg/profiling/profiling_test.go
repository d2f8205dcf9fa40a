package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes_Default(t *testing.T) {
	got, err := parseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, got)
}

func TestParseProfileTypes_Custom(t *testing.T) {
	got, err := parseProfileTypes("cpu, alloc_space,mutex,cpu")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestBuildApplicationName(t *testing.T) {
	got := buildApplicationName("", "mountarc-api", "mountarc", "production", "1.0.0", "inst-1")
	assert.Equal(t, "mountarc-api{service_name=mountarc-api,namespace=mountarc,environment=production,service_version=1.0.0,instance=inst-1}", got)
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(Config{Enabled: false})
	require.NoError(t, err)
	assert.NotPanics(t, stop)
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(Config{Enabled: true, Endpoint: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiling endpoint is required")
}

func TestInitProfiler_RejectsUnknownSampleType(t *testing.T) {
	_, err := InitProfiler(Config{Enabled: true, Endpoint: "http://pyroscope:4040", SampleTypes: "heap"})
	require.Error(t, err)
}
