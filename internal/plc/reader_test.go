package plc

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc6a_go/internal/models"
)

// fakeAccessor é um Accessor de teste com valores e falhas programáveis
type fakeAccessor struct {
	floats     map[int]float64
	words      map[int]uint16
	bits       map[int]bool
	failAll    bool
	failAddr   int
	connectErr error
	closed     bool
	swappedArg *bool
}

func (f *fakeAccessor) Connect() error { return f.connectErr }
func (f *fakeAccessor) Close() error   { f.closed = true; return nil }

func (f *fakeAccessor) ReadFloat(addr int, swapped bool) (float64, error) {
	f.swappedArg = &swapped
	if f.failAll || addr == f.failAddr {
		return 0, &ReadError{Register: fmt.Sprintf("D%04d", addr), Err: fmt.Errorf("timeout")}
	}
	return f.floats[addr], nil
}

func (f *fakeAccessor) ReadWord(addr int) (uint16, error) {
	if f.failAll || addr == f.failAddr {
		return 0, &ReadError{Register: fmt.Sprintf("D%04d", addr), Err: fmt.Errorf("timeout")}
	}
	return f.words[addr], nil
}

func (f *fakeAccessor) ReadBit(addr int) (bool, error) {
	if f.failAll || addr == f.failAddr {
		return false, &ReadError{Register: fmt.Sprintf("M%04d", addr), Err: fmt.Errorf("timeout")}
	}
	return f.bits[addr], nil
}

func testDevice() models.Device {
	return models.Device{
		Name:    "PLC_01",
		Address: "10.0.0.1",
		Swapped: true,
		Tags: []models.Tag{
			{Label: "Temp", Register: "D0200", Area: "D", Addr: 200, Kind: models.TagFloat},
			{Label: "Nivel", Register: "D0204", Area: "D", Addr: 204, Kind: models.TagWord},
			{Label: "Bomba", Register: "M0012", Area: "M", Addr: 12, Kind: models.TagBit},
		},
	}
}

func TestReadTagFloatRoundsToTwoDecimals(t *testing.T) {
	acc := &fakeAccessor{floats: map[int]float64{200: 21.4567}}
	dev := testDevice()
	ts := time.Now()

	sample := ReadTag(acc, ts, dev, dev.Tags[0])
	require.NotNil(t, sample.Value)
	assert.Equal(t, 21.46, *sample.Value)
	assert.Equal(t, ts, sample.Timestamp)

	// A flag de troca de palavras do dispositivo deve chegar à capacidade externa
	require.NotNil(t, acc.swappedArg)
	assert.True(t, *acc.swappedArg)
}

func TestReadTagWordAndBit(t *testing.T) {
	acc := &fakeAccessor{
		words: map[int]uint16{204: 512},
		bits:  map[int]bool{12: true},
	}
	dev := testDevice()
	ts := time.Now()

	word := ReadTag(acc, ts, dev, dev.Tags[1])
	require.NotNil(t, word.Value)
	assert.Equal(t, 512.0, *word.Value)

	bit := ReadTag(acc, ts, dev, dev.Tags[2])
	require.NotNil(t, bit.Value)
	assert.Equal(t, 1.0, *bit.Value)

	acc.bits[12] = false
	bit = ReadTag(acc, ts, dev, dev.Tags[2])
	require.NotNil(t, bit.Value)
	assert.Equal(t, 0.0, *bit.Value)
}

func TestReadTagFailureBecomesNullSample(t *testing.T) {
	acc := &fakeAccessor{failAll: true}
	dev := testDevice()
	ts := time.Now()

	sample := ReadTag(acc, ts, dev, dev.Tags[0])
	assert.Nil(t, sample.Value)
	assert.Equal(t, ts, sample.Timestamp)
}

func TestReadDeviceIsolatesPerTagFailures(t *testing.T) {
	acc := &fakeAccessor{
		floats:   map[int]float64{200: 10.0},
		bits:     map[int]bool{12: true},
		failAddr: 204, // apenas a word falha
	}
	RegisterDriver("fake_parcial", func(models.Device) (Accessor, error) { return acc, nil })

	reader, err := NewReader("fake_parcial")
	require.NoError(t, err)

	dev := testDevice()
	ts := time.Now()
	samples := reader.ReadDevice(ts, dev)
	require.Len(t, samples, 3)

	require.NotNil(t, samples[0].Value)
	assert.Equal(t, 10.0, *samples[0].Value)
	assert.Nil(t, samples[1].Value, "a falha da word não pode afetar as demais tags")
	require.NotNil(t, samples[2].Value)
	assert.Equal(t, 1.0, *samples[2].Value)

	assert.True(t, acc.closed, "o contexto de conexão deve ser fechado ao fim do tick")
}

func TestReadDeviceConnectionFailureYieldsAllNull(t *testing.T) {
	acc := &fakeAccessor{connectErr: &ConnectionError{Device: "PLC_01", Err: fmt.Errorf("recusado")}}
	RegisterDriver("fake_offline", func(models.Device) (Accessor, error) { return acc, nil })

	reader, err := NewReader("fake_offline")
	require.NoError(t, err)

	ts := time.Now()
	samples := reader.ReadDevice(ts, testDevice())
	require.Len(t, samples, 3)
	for _, s := range samples {
		assert.Nil(t, s.Value)
		assert.Equal(t, ts, s.Timestamp)
	}
}

func TestNewReaderUnknownDriver(t *testing.T) {
	_, err := NewReader("driver_inexistente")
	assert.Error(t, err)
}
