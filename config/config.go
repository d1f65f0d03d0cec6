// Package config loads node settings from defaults, an optional YAML file,
// GOCURIA_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gocuria/blockchain/store"
)

const EnvPrefix = "GOCURIA"

const (
	KeyNodeID      = "node-id"
	KeyListen      = "listen"
	KeyDataDir     = "data-dir"
	KeyStorage     = "storage"
	KeyPeers       = "peers"
	KeyPeerTimeout = "peer-timeout"
	KeyLogLevel    = "log-level"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// NodeID scopes persisted state and key files. It doubles as the default
	// listen port.
	NodeID      string        `mapstructure:"node-id"`
	Listen      string        `mapstructure:"listen"`
	DataDir     string        `mapstructure:"data-dir"`
	Storage     string        `mapstructure:"storage"`
	Peers       []string      `mapstructure:"peers"`
	PeerTimeout time.Duration `mapstructure:"peer-timeout"`
	LogLevel    string        `mapstructure:"log-level"`
}

// New returns a viper instance carrying the defaults and environment
// bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyNodeID, "5000")
	v.SetDefault(KeyListen, "")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeyStorage, store.BackendFile)
	v.SetDefault(KeyPeers, []string{})
	v.SetDefault(KeyPeerTimeout, 5*time.Second)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the persistent node flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyNodeID, "5000", "Node identifier; scopes data and key files")
	fs.String(KeyListen, "", "HTTP listen address (default \":<node-id>\")")
	fs.String(KeyDataDir, "./data", "Directory for chain state and keys")
	fs.String(KeyStorage, store.BackendFile, "Storage backend (file, leveldb, memory)")
	fs.StringSlice(KeyPeers, nil, "Peer addresses to add on start")
	fs.Duration(KeyPeerTimeout, 5*time.Second, "Timeout for each peer request")
	fs.String(KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	fs.String("config", "", "Config file (default config.yaml in the data dir or working dir)")
}

// Load reads configFile, or config.yaml from the data directory or working
// directory when it is empty, and decodes the merged settings. A missing
// default config file is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString(KeyDataDir))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":" + cfg.NodeID
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.NodeID) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, KeyNodeID)
	}
	if strings.ContainsAny(c.NodeID, `/\`) {
		return fmt.Errorf("%w: %s must not contain path separators", ErrInvalidConfig, KeyNodeID)
	}
	switch c.Storage {
	case store.BackendFile, store.BackendLevelDB, store.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, KeyStorage, c.Storage)
	}
	if c.PeerTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeyPeerTimeout)
	}
	return nil
}
