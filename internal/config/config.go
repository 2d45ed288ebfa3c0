// Package config resolves paddy's settings from defaults, the config file,
// .env files, PADDY_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartpaddy/advisor/pkg/client"
)

// EnvPrefix is prepended to every environment override, e.g. PADDY_API_URL.
const EnvPrefix = "PADDY"

// Keys understood by viper. Flags bind to the same names.
const (
	KeyAPIURL    = "api_url"
	KeyDataDir   = "data_dir"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyLogOutput = "log_output"
	KeyTimeout   = "timeout"
)

const (
	defaultDirName  = ".paddy"
	configFileName  = "config.yaml"
	logFileName     = "paddy.log"
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "info"
)

// Config is the resolved configuration.
type Config struct {
	APIURL    string
	DataDir   string
	LogLevel  string
	LogFormat string
	// LogOutput is stderr, stdout, discard or a file path. Empty means the
	// caller picks: the TUI logs to LogFile, commands to stderr.
	LogOutput string
	Timeout   time.Duration

	// ConfigFile is the file actually read, if any.
	ConfigFile string
}

// LogFile is the default log destination while the TUI owns the terminal.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, logFileName)
}

// DefaultDataDir returns ~/.paddy, or .paddy when there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// NewViper returns a viper instance with defaults and env binding set up.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, client.DefaultBaseURL)
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "")
	v.SetDefault(KeyTimeout, defaultTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env files and the config file into v and returns the result.
// configFile == "" means <data-dir>/config.yaml, which may be absent; an
// explicitly named file must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(expandHome(v.GetString(KeyDataDir)), configFileName)
	}
	if _, err := os.Stat(configFile); err == nil || explicit {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: reading %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		APIURL:     strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		DataDir:    expandHome(v.GetString(KeyDataDir)),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		LogOutput:  v.GetString(KeyLogOutput),
		Timeout:    v.GetDuration(KeyTimeout),
		ConfigFile: v.ConfigFileUsed(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url must not be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("config: api_url %q must start with http:// or https://", c.APIURL)
	}
	if c.DataDir == "" {
		return errors.New("config: data_dir must not be empty")
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// loadEnvFiles loads .env.local then .env. Variables already set are never
// replaced, so .env.local beats .env and the real environment beats both.
func loadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
