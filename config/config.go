// Package config owns the viper configuration engine: defaults, environment bindings and file resolution.
package config

import (
	"errors"
	"strings"

	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/filesystem"
	"github.com/marquee-cli/marquee/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps configuration keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults, binds the environment and reads the config file if there is one.
func Setup() error {
	viper.SetConfigName(constant.Marquee)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Marquee)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}
