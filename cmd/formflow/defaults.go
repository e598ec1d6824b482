package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

func newDefaultsCmd(a *app) *cobra.Command {
	var (
		page     string
		editFile string
	)
	cmd := &cobra.Command{
		Use:   "defaults <form-id>",
		Short: "Print the initial values of a form",
		Long: "Defaults derives the initial values of every field. With --edit the JSON\n" +
			"record in the given file is merged over the defaults in edit mode.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.form(args[0])
			if err != nil {
				return err
			}
			opts := []orchestrator.Option{orchestrator.WithLogger(a.logger)}
			if editFile != "" {
				data, err := readJSONFile(editFile)
				if err != nil {
					return err
				}
				opts = append(opts, orchestrator.WithMode(orchestrator.ModeEdit), orchestrator.WithEditData(data))
			}
			orch, err := orchestrator.New(form, opts...)
			if err != nil {
				return err
			}

			if page == "" {
				return writeJSON(cmd.OutOrStdout(), orch.InitialValues())
			}
			if _, ok := form.Page(page); !ok {
				return fmt.Errorf("%w %q (pages: %v)", orchestrator.ErrUnknownPage, page, form.PageIDs())
			}
			return writeJSON(cmd.OutOrStdout(), orch.PageValues(page))
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "limit the values to one page id")
	cmd.Flags().StringVar(&editFile, "edit", "", "JSON file with an existing record to edit")
	return cmd
}
