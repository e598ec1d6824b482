package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/components/lookup"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		output    string
		lookupURL string
		editFile  string
	)
	cmd := &cobra.Command{
		Use:   "fill <form-id>",
		Short: "Fill a form interactively in the terminal",
		Long: "Fill prompts for every visible field page by page and prints the parsed\n" +
			"values. Lookup options come from --lookup-url, or from the bundled\n" +
			"fixtures served in-process.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := tui.OutputFormat(output)
			switch format {
			case tui.OutputFormatJSON, tui.OutputFormatYAML, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q", output)
			}

			form, err := a.form(args[0])
			if err != nil {
				return err
			}
			orchOpts := []orchestrator.Option{orchestrator.WithLogger(a.logger)}
			if editFile != "" {
				data, err := readJSONFile(editFile)
				if err != nil {
					return err
				}
				orchOpts = append(orchOpts, orchestrator.WithMode(orchestrator.ModeEdit), orchestrator.WithEditData(data))
			}
			orch, err := orchestrator.New(form, orchOpts...)
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr(), survey.WithStdio(os.Stdin, os.Stderr, os.Stderr))
			}
			opts := []tui.Option{
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(format),
				tui.WithLogger(a.logger),
			}
			if lookupURL != "" {
				opts = append(opts, tui.WithHTTPClient(&http.Client{Timeout: a.cfg.Server.ReadTimeout}, lookupURL))
			} else {
				opts = append(opts, tui.WithFetcher(&tui.HandlerFetcher{Handler: lookup.NewHandler(
					lookup.WithDelay(0),
					lookup.WithLogger(a.logger),
					lookup.WithMinFilterLength(a.cfg.Lookup.MinFilterLength),
					lookup.WithLicenseLimit(a.cfg.Lookup.LicenseLimit),
				)}))
			}

			rendered, err := tui.New(opts...).Render(cmd.Context(), orch)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", string(tui.OutputFormatJSON), "output format: json, yaml or pretty")
	flags.StringVar(&lookupURL, "lookup-url", "", "base URL of a running lookup server")
	flags.StringVar(&editFile, "edit", "", "JSON file with an existing record to edit")
	return cmd
}
