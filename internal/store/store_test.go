package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc6a_go/internal/models"
)

func tick(s *Store, n int) time.Time {
	ts := time.Unix(int64(1700000000+n), 0)
	s.AppendTimestamp(ts)
	return ts
}

func TestTimestampBufferBounded(t *testing.T) {
	s := New(10)

	// Para todo tick N, len(timestamps) == min(N, maxLen)
	for n := 1; n <= 25; n++ {
		tick(s, n)
		want := n
		if want > 10 {
			want = 10
		}
		require.Equal(t, want, s.Len(), "tick %d", n)
	}
}

func TestSeriesNeverLongerThanTimestamps(t *testing.T) {
	s := New(5)

	for n := 0; n < 8; n++ {
		ts := tick(s, n)
		s.Append("Temp", "A", models.Float(ts, float64(n)))
		s.TrimAll(5)

		series := s.SnapshotFor("Temp")["A"]
		assert.LessOrEqual(t, len(series), s.Len())
	}
}

func TestTrimAllIdempotent(t *testing.T) {
	s := New(4)
	for n := 0; n < 9; n++ {
		ts := tick(s, n)
		s.Append("Temp", "A", models.Float(ts, float64(n)))
	}

	s.TrimAll(4)
	first := s.SnapshotFor("Temp")["A"]
	firstTimestamps := s.Timestamps()

	s.TrimAll(4)
	assert.Equal(t, first, s.SnapshotFor("Temp")["A"])
	assert.Equal(t, firstTimestamps, s.Timestamps())
}

func TestTrimKeepsMostRecent(t *testing.T) {
	s := New(3)
	for n := 0; n < 6; n++ {
		ts := tick(s, n)
		s.Append("Temp", "A", models.Float(ts, float64(n)))
		s.TrimAll(3)
	}

	series := s.SnapshotFor("Temp")["A"]
	require.Len(t, series, 3)
	assert.Equal(t, 3.0, *series[0].Value)
	assert.Equal(t, 4.0, *series[1].Value)
	assert.Equal(t, 5.0, *series[2].Value)
}

func TestTailAlignment(t *testing.T) {
	s := New(100)

	// Série que começa tarde: seus valores devem corresponder às ÚLTIMAS k
	// entradas do buffer global, em ordem
	for n := 0; n < 10; n++ {
		ts := tick(s, n)
		if n >= 6 {
			s.Append("Temp", "B", models.Float(ts, float64(n)))
		}
		s.TrimAll(100)
	}

	series := s.SnapshotFor("Temp")["B"]
	timestamps := s.Timestamps()
	require.Len(t, series, 4)

	tail := timestamps[len(timestamps)-len(series):]
	for i, sample := range series {
		assert.Equal(t, tail[i], sample.Timestamp)
	}
}

func TestSnapshotForUnknownTag(t *testing.T) {
	s := New(10)
	snap := s.SnapshotFor("inexistente")
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestNullSamplesAreRecorded(t *testing.T) {
	s := New(10)
	ts := tick(s, 0)
	s.Append("Temp", "A", models.Null(ts))

	series := s.SnapshotFor("Temp")["A"]
	require.Len(t, series, 1)
	assert.Nil(t, series[0].Value)
	assert.Equal(t, ts, series[0].Timestamp)
}

func TestWindowOverflowDropsOldest(t *testing.T) {
	// 3601 ticks com valores crescentes 0..3600: a série resultante deve ser
	// [1, 2, ..., 3600] (o primeiro valor cai)
	s := New(3600)

	for n := 0; n <= 3600; n++ {
		ts := tick(s, n)
		s.Append("Temp", "A", models.Float(ts, float64(n)))
		s.TrimAll(3600)
	}

	series := s.SnapshotFor("Temp")["A"]
	require.Len(t, series, 3600)
	require.Equal(t, 3600, s.Len())

	assert.Equal(t, 1.0, *series[0].Value)
	assert.Equal(t, 3600.0, *series[len(series)-1].Value)
	for i, sample := range series {
		require.NotNil(t, sample.Value)
		require.Equal(t, float64(i+1), *sample.Value, "posição %d", i)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(10)
	ts := tick(s, 0)
	s.Append("Temp", "A", models.Float(ts, 1.0))

	snap := s.Snapshot()
	snap["Temp"]["A"][0] = models.Null(ts)
	snap["Outra"] = map[string][]models.Sample{}

	series := s.SnapshotFor("Temp")["A"]
	require.Len(t, series, 1)
	assert.NotNil(t, series[0].Value)
}

func TestMultipleDevicesIndependentSeries(t *testing.T) {
	s := New(10)
	for n := 0; n < 3; n++ {
		ts := tick(s, n)
		s.Append("Temp", "A", models.Float(ts, 10.0+float64(n)/10))
		s.Append("Temp", "B", models.Null(ts))
		s.TrimAll(10)
	}

	snap := s.SnapshotFor("Temp")
	require.Len(t, snap, 2)
	require.Len(t, snap["A"], 3)
	require.Len(t, snap["B"], 3)

	for i, sample := range snap["A"] {
		require.NotNil(t, sample.Value)
		assert.InDelta(t, 10.0+float64(i)/10, *sample.Value, 1e-9, fmt.Sprintf("amostra %d", i))
	}
	for _, sample := range snap["B"] {
		assert.Nil(t, sample.Value)
	}
}
