package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestampScan(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	var ts Timestamp
	require.NoError(t, ts.Scan(now))
	got, ok := ts.Time()
	require.True(t, ok)
	require.True(t, now.Equal(got))

	require.NoError(t, ts.Scan("2024-03-04T05:06:07.000Z"))
	text, ok := ts.Literal()
	require.True(t, ok)
	require.Equal(t, "2024-03-04T05:06:07.000Z", text)

	require.NoError(t, ts.Scan([]byte("2024-03-04")))
	text, _ = ts.Literal()
	require.Equal(t, "2024-03-04", text)

	require.NoError(t, ts.Scan(nil))
	require.True(t, ts.IsZero())

	require.Error(t, ts.Scan(42))
}

func TestTimestampZeroValues(t *testing.T) {
	require.True(t, At(time.Time{}).IsZero())
	require.True(t, Literal("").IsZero())
	require.False(t, At(time.Now()).IsZero())
}
