package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "recordform"
	configFileType = "yaml"
	envPrefix      = "RECORDFORM"

	keySchema         = "schema"
	keyOpenAPISource  = "openapi.source"
	keyOpenAPISelect  = "openapi.selector"
	keyLabels         = "labels"
	keyColumns        = "columns"
	keyValues         = "values"
	keyRenderer       = "renderer"
	keyTitle          = "title"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keySQLiteDSN      = "sqlite.dsn"
	keySQLiteTable    = "sqlite.table"
	keySQLiteKey      = "sqlite.key"
	keySQLiteID       = "sqlite.id"
	keyServeAddr      = "serve.addr"
	keyOpenAPITimeout = "openapi.timeout"
)

// loadConfig reads recordform.yaml from the working directory, or path when
// set. A missing default file is not an error; a missing explicit one is.
// Environment variables use the RECORDFORM_ prefix with dots replaced by
// underscores (RECORDFORM_SQLITE_DSN).
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(keyRenderer, "vanilla")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keySQLiteKey, "id")
	v.SetDefault(keyServeAddr, ":8080")
	v.SetDefault(keyOpenAPITimeout, "30s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
