package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 100, cfg.Serial.BufferSize)
	assert.Equal(t, uint32(20000000), cfg.Acquisition.ClockHz)
	assert.Equal(t, uint32(9600), cfg.Acquisition.BaudRate)
	assert.Equal(t, time.Second, cfg.Acquisition.Period)
	assert.Equal(t, 2*time.Millisecond, cfg.Acquisition.AcquisitionTime)
	assert.Equal(t, float64(5.0), cfg.Sim.VRef)
	assert.Equal(t, float64(72), cfg.Sim.HeartRate)
	assert.Equal(t, 40*time.Second, cfg.Sim.CuffCycle)
	assert.Equal(t, float64(60), cfg.Display.WindowSeconds)
	assert.Equal(t, 1000, cfg.Display.MaxPoints)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
  baud_rate: 9600

acquisition:
  clock_hz: 4000000
  baud_rate: 2400
  period: 500ms
  acquisition_time: 20us

sim:
  tx_polls: 3
  conversion_polls: 5
  heart_rate: 60
  cuff_cycle: 30s

display:
  window_seconds: 30
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, uint32(4000000), cfg.Acquisition.ClockHz)
	assert.Equal(t, uint32(2400), cfg.Acquisition.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Acquisition.Period)
	assert.Equal(t, 20*time.Microsecond, cfg.Acquisition.AcquisitionTime)
	assert.Equal(t, 3, cfg.Sim.TxPolls)
	assert.Equal(t, 5, cfg.Sim.ConversionPolls)
	assert.Equal(t, float64(60), cfg.Sim.HeartRate)
	assert.Equal(t, 30*time.Second, cfg.Sim.CuffCycle)
	assert.Equal(t, float64(30), cfg.Display.WindowSeconds)
}

func TestLoad_ValidTOML(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.toml")

	tomlContent := `
[serial]
port = "/dev/ttyACM1"

[acquisition]
period = "250ms"

[sim]
body_temp = 38.5
`
	require.NoError(t, os.WriteFile(name, []byte(tomlContent), 0644))

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Acquisition.Period)
	assert.Equal(t, float64(38.5), cfg.Sim.BodyTemp)
	assert.Equal(t, uint32(20000000), cfg.Acquisition.ClockHz)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidTOML(t *testing.T) {
	name := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(name, []byte("[serial\nport = "), 0644))

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, time.Second, cfg.Acquisition.Period)
	assert.Equal(t, float64(60), cfg.Display.WindowSeconds)
	assert.Equal(t, 40*time.Second, cfg.Sim.CuffCycle)
}

func TestSave(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.Serial.Port = "/dev/ttyUSB0"
			cfg.Acquisition.Period = 2 * time.Second
			cfg.Display.WindowSeconds = 15

			name := filepath.Join(t.TempDir(), "saved"+ext)
			require.NoError(t, cfg.Save(name))

			// Load it back and verify
			loaded, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
			assert.Equal(t, 2*time.Second, loaded.Acquisition.Period)
			assert.Equal(t, float64(15), loaded.Display.WindowSeconds)
		})
	}
}
