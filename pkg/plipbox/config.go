package plipbox

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/plipbox.go/pkg/bridge"
	"github.com/robotalks/plipbox.go/pkg/devlog"
	"github.com/robotalks/plipbox.go/pkg/param"
)

// Config defines the configurations of a Box.
type Config struct {
	// ParamFile is the file emulating the parameter EEPROM.
	ParamFile string
	// LogSize is the number of records kept by the device log.
	LogSize int
	// PollInterval is the interval the ethernet carrier is checked.
	PollInterval time.Duration
}

var defaultConfig = Config{
	ParamFile:    "plipbox.yaml",
	LogSize:      devlog.DefaultSize,
	PollInterval: bridge.DefaultPollInterval,
}

func init() {
	if val := os.Getenv("PLIPBOX_PARAMS"); val != "" {
		defaultConfig.ParamFile = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ParamFile, "params", defaultConfig.ParamFile, "Parameter file.")
	flag.IntVar(&defaultConfig.LogSize, "log-size", defaultConfig.LogSize, "Records kept by device log.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Ethernet carrier poll interval.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBox creates a Box using the config.
func (c *Config) NewBox() (*Box, error) {
	box, err := New(param.NewFileStore(c.ParamFile), devlog.NewSize(c.LogSize))
	if err != nil {
		return nil, err
	}
	box.Ether.PollInterval = c.PollInterval
	return box, nil
}
