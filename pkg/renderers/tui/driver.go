package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line answer. A non-nil Validator is
// re-run by the terminal until it accepts the answer.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig lists the choices for Select and MultiSelect. Selected is the
// preselected index for Select (-1 for none); Checked holds the preselected
// indices for MultiSelect.
type SelectConfig struct {
	Message  string
	Help     string
	Options  []string
	Selected int
	Checked  []int
}

type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver is the terminal seen by a Filler. Select and MultiSelect
// answer with indices into SelectConfig.Options.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// selectPageSize bounds how many lookup options are listed at once.
const selectPageSize = 12

// SurveyDriver prompts on the process terminal through survey.
type SurveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns a driver printing page headings and notices to
// out (stdout when nil). opts apply to every prompt, e.g. survey.WithStdio.
func NewSurveyDriver(out io.Writer, opts ...survey.AskOpt) *SurveyDriver {
	if out == nil {
		out = os.Stdout
	}
	return &SurveyDriver{out: out, opts: opts}
}

// askOne runs one survey prompt and decodes its answer into T.
func askOne[T any](ctx context.Context, d *SurveyDriver, prompt survey.Prompt, extra ...survey.AskOpt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	opts := slices.Concat(d.opts, extra)
	err := survey.AskOne(prompt, &answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return answer, ErrAborted
	}
	return answer, err
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, validate(cfg.Validator)...)
}

func (d *SurveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Password{Message: cfg.Message, Help: cfg.Help}, validate(cfg.Validator)...)
}

func (d *SurveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	return askOne[bool](ctx, d, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *SurveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Help: cfg.Help, Options: cfg.Options, PageSize: selectPageSize}
	if cfg.Selected >= 0 && cfg.Selected < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.Selected]
	}
	index, err := askOne[int](ctx, d, prompt)
	if err != nil {
		return -1, err
	}
	return index, nil
}

func (d *SurveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Help: cfg.Help, Options: cfg.Options, PageSize: selectPageSize}
	var checked []string
	for _, i := range cfg.Checked {
		if i >= 0 && i < len(cfg.Options) {
			checked = append(checked, cfg.Options[i])
		}
	}
	if len(checked) > 0 {
		prompt.Default = checked
	}
	answers, err := askOne[[]string](ctx, d, prompt)
	if err != nil {
		return nil, err
	}
	indices := make([]int, 0, len(answers))
	for _, a := range answers {
		if i := slices.Index(cfg.Options, a); i >= 0 {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

func (d *SurveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func validate(fn func(string) error) []survey.AskOpt {
	if fn == nil {
		return nil
	}
	return []survey.AskOpt{survey.WithValidator(func(ans any) error {
		s, _ := ans.(string)
		return fn(s)
	})}
}
