// Package config loads the runtime configuration of the goformula command
// and HTTP server.
//
// Values come from, in increasing priority: built-in defaults, an optional
// configuration file (YAML, TOML or JSON) and GOFORMULA_* environment
// variables, where nested keys are joined with '_' (GOFORMULA_ENGINE_MAX_NODES).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "GOFORMULA"

// Config represents the configuration implementation.
type Config struct {
	Engine *Engine `validate:"required"`
	Logger *Logger `validate:"required"`
	Server *Server `validate:"required"`
	// File is the configuration file that was read, if any.
	File  string
	Viper *viper.Viper `validate:"-"`
}

// Load reads the configuration. When path is empty the file is looked up as
// goformula.{yaml,toml,json} in the working directory and in
// $HOME/.goformula; a missing file is not an error in that case.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("goformula")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".goformula"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Engine: getEngineConfig(v),
		Logger: getLoggerConfig(v),
		Server: getServerConfig(v),
		File:   v.ConfigFileUsed(),
		Viper:  v,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Engine: getEngineConfig(v),
		Logger: getLoggerConfig(v),
		Server: getServerConfig(v),
		Viper:  v,
	}
}

func setDefaults(v *viper.Viper) {
	setEngineDefaults(v)
	setLoggerDefaults(v)
	setServerDefaults(v)
}

var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		key := strings.TrimPrefix(e.Namespace(), "Config.")
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", key, e.Tag(), e.Param(), e.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", key, e.Tag(), e.Value()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
