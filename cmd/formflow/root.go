package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/telemetry"
	"github.com/goliatone/go-formflow/pkg/loader"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg    config.Config
	logger *slog.Logger
	closer io.Closer

	// driver replaces the survey prompt driver for fill.
	driver tui.PromptDriver
}

func newApp() *app {
	return &app{v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formflow",
		Short:         "Declarative multi-page forms: lookup server, linting and terminal filling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./formflow.yaml when present)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.String("forms", "", "directory of form documents (default: bundled forms)")
	flags.String("log-format", "", "log format: text or json")
	a.bind(flags, map[string]string{
		"forms":      "forms.dir",
		"log-format": "log.format",
	})

	cmd.AddCommand(
		newServeCmd(a),
		newLintCmd(a),
		newSchemaCmd(a),
		newDefaultsCmd(a),
		newFillCmd(a),
	)
	return cmd
}

// bind maps flag names to config keys so flags override file and env values.
func (a *app) bind(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if flag := flags.Lookup(name); flag != nil {
			_ = a.v.BindPFlag(key, flag)
		}
	}
}

func (a *app) init(logs io.Writer) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, closer, err := telemetry.Init(logs, cfg.Log, a.verbose)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	return nil
}

// forms loads the configured form directory, or the bundled forms.
func (a *app) forms() (*loader.Store, error) {
	if a.cfg.Forms.Dir == "" {
		return loader.Bundled()
	}
	store, err := loader.LoadFS(os.DirFS(a.cfg.Forms.Dir))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("forms loaded", "dir", a.cfg.Forms.Dir, "ids", store.IDs())
	return store, nil
}

func (a *app) form(id string) (model.FormConfig, error) {
	store, err := a.forms()
	if err != nil {
		return model.FormConfig{}, err
	}
	form, ok := store.Form(id)
	if !ok {
		return model.FormConfig{}, fmt.Errorf("unknown form %q (available: %v)", id, store.IDs())
	}
	return form, nil
}

func readJSONFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
