package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/loader"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

var errLintFailed = errors.New("lint failed")

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check form documents load and compile",
		Long: "Lint parses every form document under the given files or directories and\n" +
			"builds each form. Without arguments the configured forms are checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				store, err := a.forms()
				if err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", formsLabel(a.cfg.Forms.Dir), err)
					return errLintFailed
				}
				if lintStore(out, store) > 0 {
					return errLintFailed
				}
				return nil
			}

			problems := 0
			for _, path := range args {
				problems += lintPath(out, path)
			}
			if problems > 0 {
				return fmt.Errorf("%w: %d problem(s)", errLintFailed, problems)
			}
			return nil
		},
	}
}

func lintPath(out io.Writer, path string) int {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
		return 1
	}
	if info.IsDir() {
		store, err := loader.LoadFS(os.DirFS(path))
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			return 1
		}
		if store.Empty() {
			fmt.Fprintf(out, "FAIL %s: no form documents\n", path)
			return 1
		}
		return lintStore(out, store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
		return 1
	}
	forms, err := loader.Parse(data, filepath.Base(path))
	if err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
		return 1
	}
	problems := 0
	for _, id := range sortedIDs(forms) {
		problems += lintForm(out, id, path, forms[id])
	}
	return problems
}

func lintStore(out io.Writer, store *loader.Store) int {
	problems := 0
	for _, id := range store.IDs() {
		form, _ := store.Form(id)
		source, _ := store.Source(id)
		problems += lintForm(out, id, source, form)
	}
	return problems
}

func lintForm(out io.Writer, id, source string, form model.FormConfig) int {
	if _, err := orchestrator.New(form); err != nil {
		fmt.Fprintf(out, "FAIL %s (%s): %v\n", id, source, err)
		return 1
	}
	fmt.Fprintf(out, "ok   %s (%s)\n", id, source)
	return 0
}

func formsLabel(dir string) string {
	if dir == "" {
		return "bundled forms"
	}
	return dir
}
