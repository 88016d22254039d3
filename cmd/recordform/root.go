package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-recordform/pkg/renderers/tui"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	v          *viper.Viper
	logger     *slog.Logger

	// promptDriver replaces the survey driver in tests.
	promptDriver tui.PromptDriver
}

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"schema":       keySchema,
	"openapi":      keyOpenAPISource,
	"operation":    keyOpenAPISelect,
	"labels":       keyLabels,
	"columns":      keyColumns,
	"values":       keyValues,
	"renderer":     keyRenderer,
	"title":        keyTitle,
	"log-level":    keyLogLevel,
	"log-format":   keyLogFormat,
	"sqlite-dsn":   keySQLiteDSN,
	"sqlite-table": keySQLiteTable,
	"sqlite-key":   keySQLiteKey,
	"sqlite-id":    keySQLiteID,
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recordform",
		Short:         "Render, fill and validate schema-driven record forms",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./recordform.yaml)")
	flags.String("schema", "", "schema document (JSON or YAML)")
	flags.String("openapi", "", "OpenAPI document path or URL")
	flags.String("operation", "", "OpenAPI operation id or #/components/schemas/<name>")
	flags.String("labels", "", "label metadata file")
	flags.String("columns", "", "column metadata file")
	flags.String("values", "", "initial values file (JSON or YAML)")
	flags.String("renderer", "", "renderer name (vanilla or tui)")
	flags.String("title", "", "form title")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("sqlite-dsn", "", "SQLite database holding the record")
	flags.String("sqlite-table", "", "table holding the record")
	flags.String("sqlite-key", "", "key column of the table")
	flags.String("sqlite-id", "", "key value of the record")

	root.AddCommand(
		a.renderCmd(),
		a.promptCmd(),
		a.validateCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := loadConfig(a.configFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	if flag := cmd.Flags().Lookup("addr"); flag != nil {
		if err := v.BindPFlag(keyServeAddr, flag); err != nil {
			return fmt.Errorf("bind flag addr: %w", err)
		}
	}

	logger, err := newLogger(a.errOut, v.GetString(keyLogLevel), v.GetString(keyLogFormat))
	if err != nil {
		return err
	}
	a.v = v
	a.logger = logger
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recordform %s\n", version)
		},
	}
}
