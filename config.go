package shiftlight

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Config struct {
	CANInterface string
	CommandPort  string
	CommandBaud  int
	LEDCount     int
	StorageDir   string
	// WLED controller address (host:port); empty disables the strip
	WLEDAddress string
}

func DefaultConfig() *Config {
	return &Config{
		CANInterface: "can0",
		CommandPort:  "/dev/ttyUSB0",
		CommandBaud:  115200,
		LEDCount:     16,
		StorageDir:   "/var/lib/shiftlight",
	}
}

// LoadConfig reads a TOML config file located next to the binary.
func LoadConfig(fileName string) (*Config, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := DefaultConfig()
	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration")
	}
	if config.LEDCount <= 0 || config.LEDCount%2 != 0 {
		return nil, errors.Errorf("led count must be a positive even number, got %d", config.LEDCount)
	}
	return config, nil
}
