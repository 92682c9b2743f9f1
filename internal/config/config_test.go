package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "inexistente.json"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Poller.Interval)
	assert.Equal(t, 3600, cfg.Poller.WindowSize)
	assert.Equal(t, "sim", cfg.Poller.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.True(t, cfg.CSV.Enabled)
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, "PLC_01", cfg.Devices[0].Name)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"server": {"port": 9090},
		"poller": {"interval": 2000000000, "windowSize": 100, "driver": "sim"},
		"devices": [
			{
				"name": "Forno",
				"address": "192.168.0.50",
				"swapped": true,
				"tags": [{"label": "Temp", "register": "D0100", "type": "float"}]
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 100, cfg.Poller.WindowSize)
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, "Forno", cfg.Devices[0].Name)
	assert.True(t, cfg.Devices[0].Swapped)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("PLC_DRIVER", "fc6a")
	t.Setenv("MQTT_BROKER", "tcp://broker.local:1883")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "inexistente.json"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Poller.Interval)
	assert.Equal(t, "fc6a", cfg.Poller.Driver)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
}
