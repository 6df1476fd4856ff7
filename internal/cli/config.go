package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyGuestUserID   = "guest_user_id"
	cfgKeyRootURL       = "root_url"
	cfgKeyHTTPRoot      = "http_root"
	cfgKeyHTTPS         = "https"
	cfgKeyUserCacheSize = "user_cache_size"
)

const configHeader = "# Commentary configuration\n" +
	"# data_dir may be left empty to use the platform data directory.\n\n"

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Keys missing from the
// file take the values of types.DefaultConfig.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyDataDir, def.DataDir)
	v.SetDefault(cfgKeyGuestUserID, def.GuestUserID)
	v.SetDefault(cfgKeyRootURL, def.RootURL)
	v.SetDefault(cfgKeyHTTPRoot, def.HTTPRoot)
	v.SetDefault(cfgKeyHTTPS, def.HTTPS)
	v.SetDefault(cfgKeyUserCacheSize, def.UserCacheSize)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       v.GetString(cfgKeyDataDir),
		GuestUserID:   v.GetInt(cfgKeyGuestUserID),
		RootURL:       v.GetString(cfgKeyRootURL),
		HTTPRoot:      v.GetString(cfgKeyHTTPRoot),
		HTTPS:         v.GetBool(cfgKeyHTTPS),
		UserCacheSize: v.GetInt(cfgKeyUserCacheSize),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
