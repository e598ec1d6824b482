package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

func newSchemaCmd(a *app) *cobra.Command {
	var page string
	cmd := &cobra.Command{
		Use:   "schema <form-id>",
		Short: "Print the JSON Schema of a form or one of its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.form(args[0])
			if err != nil {
				return err
			}
			orch, err := orchestrator.New(form, orchestrator.WithLogger(a.logger))
			if err != nil {
				return err
			}
			target := orch.FormSchema()
			if page != "" {
				pageSchema, ok := orch.PageSchema(page)
				if !ok {
					return fmt.Errorf("%w %q (pages: %v)", orchestrator.ErrUnknownPage, page, form.PageIDs())
				}
				target = pageSchema
			}
			return writeJSON(cmd.OutOrStdout(), target.JSONSchema())
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "limit the schema to one page id")
	return cmd
}

func sortedIDs(forms map[string]model.FormConfig) []string {
	return slices.Sorted(maps.Keys(forms))
}
