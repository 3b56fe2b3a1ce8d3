package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial" toml:"serial"`
	Acquisition AcquisitionConfig `yaml:"acquisition" toml:"acquisition"`
	Sim         SimConfig         `yaml:"sim" toml:"sim"`
	Display     DisplayConfig     `yaml:"display" toml:"display"`
}

// SerialConfig contains host serial port configuration.
type SerialConfig struct {
	Port       string `yaml:"port" toml:"port"`
	BaudRate   int    `yaml:"baud_rate" toml:"baud_rate"`
	BufferSize int    `yaml:"buffer_size" toml:"buffer_size"` // Readings channel capacity
}

// AcquisitionConfig contains the firmware loop and peripheral parameters.
type AcquisitionConfig struct {
	ClockHz         uint32        `yaml:"clock_hz" toml:"clock_hz"`
	BaudRate        uint32        `yaml:"baud_rate" toml:"baud_rate"`
	Period          time.Duration `yaml:"period" toml:"period"`                     // Delay between reports
	AcquisitionTime time.Duration `yaml:"acquisition_time" toml:"acquisition_time"` // ADC settling time
}

// SimConfig contains simulated peripheral and sensor parameters.
type SimConfig struct {
	TxPolls         int           `yaml:"tx_polls" toml:"tx_polls"`                 // TXIF polls per character
	ConversionPolls int           `yaml:"conversion_polls" toml:"conversion_polls"` // GO/DONE polls per conversion
	VRef            float64       `yaml:"vref" toml:"vref"`                         // ADC reference (V)
	HeartRate       float64       `yaml:"heart_rate" toml:"heart_rate"`             // Beats per minute
	BodyTemp        float64       `yaml:"body_temp" toml:"body_temp"`               // Degrees Celsius
	CuffPeak        float64       `yaml:"cuff_peak" toml:"cuff_peak"`               // mmHg
	CuffCycle       time.Duration `yaml:"cuff_cycle" toml:"cuff_cycle"`             // Inflate and deflate period
	Systolic        float64       `yaml:"systolic" toml:"systolic"`                 // mmHg
	Diastolic       float64       `yaml:"diastolic" toml:"diastolic"`               // mmHg
	NoiseLevel      float64       `yaml:"noise_level" toml:"noise_level"`           // V
}

// DisplayConfig contains scope display parameters.
type DisplayConfig struct {
	WindowSeconds float64 `yaml:"window_seconds" toml:"window_seconds"`
	MaxPoints     int     `yaml:"max_points" toml:"max_points"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:       "COM3", // Default for Windows, should be "/dev/ttyUSB0" on Linux/Mac
			BaudRate:   9600,
			BufferSize: 100,
		},
		Acquisition: AcquisitionConfig{
			ClockHz:         20000000,
			BaudRate:        9600,
			Period:          time.Second,
			AcquisitionTime: 2 * time.Millisecond,
		},
		Sim: SimConfig{
			TxPolls:         1,
			ConversionPolls: 1,
			VRef:            5.0,
			HeartRate:       72,
			BodyTemp:        36.8,
			CuffPeak:        180,
			CuffCycle:       40 * time.Second,
			Systolic:        120,
			Diastolic:       80,
			NoiseLevel:      0.005,
		},
		Display: DisplayConfig{
			WindowSeconds: 60,
			MaxPoints:     1000,
		},
	}
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isTOML(filename) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML or TOML file, chosen by extension.
func (c *Config) Save(filename string) error {
	var data []byte
	if isTOML(filename) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize == 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.Acquisition.ClockHz == 0 {
		c.Acquisition.ClockHz = def.Acquisition.ClockHz
	}
	if c.Acquisition.BaudRate == 0 {
		c.Acquisition.BaudRate = def.Acquisition.BaudRate
	}
	if c.Acquisition.Period == 0 {
		c.Acquisition.Period = def.Acquisition.Period
	}
	if c.Acquisition.AcquisitionTime == 0 {
		c.Acquisition.AcquisitionTime = def.Acquisition.AcquisitionTime
	}

	if c.Sim.VRef == 0 {
		c.Sim.VRef = def.Sim.VRef
	}
	if c.Sim.HeartRate == 0 {
		c.Sim.HeartRate = def.Sim.HeartRate
	}
	if c.Sim.BodyTemp == 0 {
		c.Sim.BodyTemp = def.Sim.BodyTemp
	}
	if c.Sim.CuffPeak == 0 {
		c.Sim.CuffPeak = def.Sim.CuffPeak
	}
	if c.Sim.CuffCycle == 0 {
		c.Sim.CuffCycle = def.Sim.CuffCycle
	}
	if c.Sim.Systolic == 0 {
		c.Sim.Systolic = def.Sim.Systolic
	}
	if c.Sim.Diastolic == 0 {
		c.Sim.Diastolic = def.Sim.Diastolic
	}

	if c.Display.WindowSeconds == 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}
	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}
}
