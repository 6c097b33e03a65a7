// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

// Package utils provides configuration loading and small network helpers.
package utils

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ConfigurationFileDirectory is set from the --config_dir flag before any
// command runs.
var ConfigurationFileDirectory = "."

// LoadConfiguration merges the named config file (yaml/toml/json, no
// extension) into viper and enables env-var overrides. Returns false when the
// file is absent and not required.
func LoadConfiguration(configFileName string, required bool) bool {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath(ResolvePath(ConfigurationFileDirectory))
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.bucketd")
	viper.AddConfigPath("/usr/local/etc/bucketd/")
	viper.AddConfigPath("/etc/bucketd/")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if required {
				log.Fatal().Msgf("Config file not found: %s", configFileName)
			}
			log.Info().Msgf("Config file not found: %s", configFileName)
			return false
		}

		if required {
			log.Fatal().Msgf("Failed to load required config file: %s", configFileName)
		}
		return false
	}
	log.Info().Msgf("Loaded config file: %s", viper.ConfigFileUsed())

	return true
}

// ResolvePath expands a leading ~ to the user home directory.
func ResolvePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// JoinHostPort is like net.JoinHostPort but takes an integer port.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
