package csvlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc6a_go/internal/models"
)

func testDevice() models.Device {
	return models.Device{
		Name: "PLC_01",
		Tags: []models.Tag{
			{Label: "Temp", Kind: models.TagFloat},
			{Label: "Bomba", Kind: models.TagBit},
		},
	}
}

func readFile(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	dev := testDevice()
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, l.Append(ts, dev, []models.Sample{
		models.Float(ts, 21.46),
		models.Float(ts, 1),
	}))
	require.NoError(t, l.Append(ts.Add(time.Second), dev, []models.Sample{
		models.Float(ts, 21.5),
		models.Float(ts, 0),
	}))

	lines := readFile(t, filepath.Join(dir, "PLC_01_2026-08-23.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,Temp,Bomba", lines[0])
	assert.Equal(t, "2026-08-23 10:00:00,21.46,1", lines[1])
	assert.Equal(t, "2026-08-23 10:00:01,21.5,0", lines[2])
}

func TestNullSampleBecomesEmptyCell(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	dev := testDevice()
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, l.Append(ts, dev, []models.Sample{
		models.Null(ts),
		models.Float(ts, 1),
	}))

	lines := readFile(t, filepath.Join(dir, "PLC_01_2026-08-23.csv"))
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-08-23 10:00:00,,1", lines[1])
}

func TestDayRolloverOpensNewFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	dev := testDevice()
	d1 := time.Date(2026, 8, 23, 23, 59, 59, 0, time.UTC)
	d2 := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	require.NoError(t, l.Append(d1, dev, []models.Sample{models.Float(d1, 1), models.Float(d1, 0)}))
	require.NoError(t, l.Append(d2, dev, []models.Sample{models.Float(d2, 2), models.Float(d2, 1)}))

	first := readFile(t, filepath.Join(dir, "PLC_01_2026-08-23.csv"))
	second := readFile(t, filepath.Join(dir, "PLC_01_2026-08-24.csv"))

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, "timestamp,Temp,Bomba", second[0])
}

func TestReopenAppendsWithoutNewHeader(t *testing.T) {
	dir := t.TempDir()
	dev := testDevice()
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	l, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, l.Append(ts, dev, []models.Sample{models.Float(ts, 1), models.Float(ts, 0)}))
	l.Close()

	// Reinício do processo no mesmo dia: continua no mesmo arquivo
	l2, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, l2.Append(ts.Add(time.Minute), dev, []models.Sample{models.Float(ts, 2), models.Float(ts, 1)}))
	l2.Close()

	lines := readFile(t, filepath.Join(dir, "PLC_01_2026-08-23.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,Temp,Bomba", lines[0])
}

func TestSeparateFilePerDevice(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	devA := testDevice()
	devB := models.Device{Name: "PLC_02", Tags: []models.Tag{{Label: "Nivel", Kind: models.TagWord}}}

	require.NoError(t, l.Append(ts, devA, []models.Sample{models.Float(ts, 1), models.Float(ts, 0)}))
	require.NoError(t, l.Append(ts, devB, []models.Sample{models.Float(ts, 42)}))

	assert.FileExists(t, filepath.Join(dir, "PLC_01_2026-08-23.csv"))
	assert.FileExists(t, filepath.Join(dir, "PLC_02_2026-08-23.csv"))

	lines := readFile(t, filepath.Join(dir, "PLC_02_2026-08-23.csv"))
	assert.Equal(t, "timestamp,Nivel", lines[0])
}
