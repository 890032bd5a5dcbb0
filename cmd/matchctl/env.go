package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Aidin1998/sanctions_matcher/internal/app"
	"github.com/Aidin1998/sanctions_matcher/internal/config"
	"github.com/Aidin1998/sanctions_matcher/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// annotationStorageOnly marks commands that need no scoring model.
const annotationStorageOnly = "storage_only"

// cliEnv carries state shared by every subcommand.
type cliEnv struct {
	configFile string
	output     string

	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

func (e *cliEnv) viper() *viper.Viper {
	if e.v == nil {
		e.v = viper.New()
	}
	return e.v
}

func (e *cliEnv) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(e.viper(), e.configFile)
	if err != nil {
		return err
	}
	e.cfg = cfg

	// the CLI stays quiet unless asked; flags override the service log settings
	level, format := "warn", "console"
	if cmd.Flags().Changed("log-level") {
		level = cfg.Log.Level
	}
	if cmd.Flags().Changed("log-format") {
		format = cfg.Log.Format
	}
	log, err := logger.NewLoggerTo(level, format, zapcore.Lock(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	e.logger = log

	if e.output != "table" && e.output != "json" {
		return fmt.Errorf("invalid output format: %s", e.output)
	}

	var opts []app.Option
	if cmd.Annotations[annotationStorageOnly] == "true" {
		opts = append(opts, app.WithoutScoring())
	}
	a, err := app.New(cmd.Context(), cfg, log, opts...)
	if err != nil {
		return err
	}
	e.app = a
	return nil
}

func (e *cliEnv) close(*cobra.Command, []string) {
	if e.app != nil {
		e.app.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// write renders v as JSON or hands the writer to table.
func (e *cliEnv) write(w io.Writer, v interface{}, table func(io.Writer) error) error {
	if e.output == "json" {
		return e.printJSON(w, v)
	}
	return table(w)
}

func (e *cliEnv) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
