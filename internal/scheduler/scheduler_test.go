package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("07:30")
	require.NoError(t, err)
	assert.Equal(t, "30 7 * * *", spec)

	spec, err = buildDailySpec("00:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 * * *", spec)
}

func TestBuildDailySpecRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "7", "24:00", "12:60", "aa:bb", "12:30:00"} {
		_, err := buildDailySpec(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
