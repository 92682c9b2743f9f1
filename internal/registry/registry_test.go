package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
)

func validDevice(name string) config.DeviceConfig {
	return config.DeviceConfig{
		Name:    name,
		Address: "10.10.10.10",
		Tags: []config.TagConfig{
			{Label: "Temp", Register: "D0200", Type: "float"},
		},
	}
}

func TestLoadValidDevice(t *testing.T) {
	reg, err := Load([]config.DeviceConfig{
		{
			Name:    "PLC_01",
			Address: "192.168.0.5",
			Swapped: true,
			Tags: []config.TagConfig{
				{Label: "Temp", Register: "D0200", Type: "float"},
				{Label: "Pressao", Register: "D0204", Type: "word"},
				{Label: "Bomba", Register: "M0012", Type: "bit"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, reg.Devices(), 1)

	dev := reg.Devices()[0]
	assert.Equal(t, "PLC_01", dev.Name)
	assert.True(t, dev.Swapped)
	require.Len(t, dev.Tags, 3)

	assert.Equal(t, models.TagFloat, dev.Tags[0].Kind)
	assert.Equal(t, "D", dev.Tags[0].Area)
	assert.Equal(t, 200, dev.Tags[0].Addr)

	assert.Equal(t, models.TagBit, dev.Tags[2].Kind)
	assert.Equal(t, "M", dev.Tags[2].Area)
	assert.Equal(t, 12, dev.Tags[2].Addr)
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.DeviceConfig
	}{
		{"nome longo demais", config.DeviceConfig{
			Name: "nome_com_muito_mais_de_vinte_chars", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "word"}},
		}},
		{"nome com espaco", config.DeviceConfig{
			Name: "PLC 01", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "word"}},
		}},
		{"ip invalido", config.DeviceConfig{
			Name: "PLC_01", Address: "999.1.1.1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "word"}},
		}},
		{"ipv6", config.DeviceConfig{
			Name: "PLC_01", Address: "::1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "word"}},
		}},
		{"sem tags", config.DeviceConfig{
			Name: "PLC_01", Address: "10.0.0.1",
		}},
		{"registrador invalido", config.DeviceConfig{
			Name: "PLC_01", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "X0001", Type: "word"}},
		}},
		{"tipo invalido", config.DeviceConfig{
			Name: "PLC_01", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "double"}},
		}},
		{"bit em area D", config.DeviceConfig{
			Name: "PLC_01", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "D0001", Type: "bit"}},
		}},
		{"float em area M", config.DeviceConfig{
			Name: "PLC_01", Address: "10.0.0.1",
			Tags: []config.TagConfig{{Label: "T", Register: "M0001", Type: "float"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]config.DeviceConfig{tc.cfg})
			assert.Error(t, err)
		})
	}
}

func TestLoadSkipsOnlyInvalidDevice(t *testing.T) {
	// Um registro malformado aborta apenas o dispositivo afetado
	reg, err := Load([]config.DeviceConfig{
		validDevice("PLC_OK"),
		{Name: "PLC_RUIM", Address: "nao-e-ip", Tags: []config.TagConfig{
			{Label: "T", Register: "D0001", Type: "word"},
		}},
		validDevice("PLC_OK2"),
	})
	require.NoError(t, err)
	require.Len(t, reg.Devices(), 2)
	assert.Equal(t, "PLC_OK", reg.Devices()[0].Name)
	assert.Equal(t, "PLC_OK2", reg.Devices()[1].Name)
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	reg, err := Load([]config.DeviceConfig{
		validDevice("PLC_01"),
		validDevice("PLC_01"),
	})
	require.NoError(t, err)
	assert.Len(t, reg.Devices(), 1)
}

func TestActiveCapsAtFiveDevices(t *testing.T) {
	// Com 7 dispositivos configurados, exatamente os 5 primeiros são monitorados
	cfgs := make([]config.DeviceConfig, 0, 7)
	for i := 1; i <= 7; i++ {
		cfgs = append(cfgs, validDevice(fmt.Sprintf("PLC_%02d", i)))
	}

	reg, err := Load(cfgs)
	require.NoError(t, err)

	active := reg.Active()
	require.Len(t, active, 5)
	for i, d := range active {
		assert.Equal(t, fmt.Sprintf("PLC_%02d", i+1), d.Name)
	}

	_, ok := reg.Find("PLC_06")
	assert.False(t, ok, "dispositivo truncado não deve ser encontrado entre os ativos")
}

func TestTagLabelsSortedAndDistinct(t *testing.T) {
	a := validDevice("PLC_A")
	a.Tags = []config.TagConfig{
		{Label: "Temp", Register: "D0200", Type: "float"},
		{Label: "Alarme", Register: "M0001", Type: "bit"},
	}
	b := validDevice("PLC_B")
	b.Tags = []config.TagConfig{
		{Label: "Temp", Register: "D0300", Type: "float"},
		{Label: "Nivel", Register: "D0302", Type: "word"},
	}

	reg, err := Load([]config.DeviceConfig{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"Alarme", "Nivel", "Temp"}, reg.TagLabels())
}
