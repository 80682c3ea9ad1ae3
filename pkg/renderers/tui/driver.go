package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line question.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a choice among Options. Select uses DefaultIndex,
// MultiSelect uses Defaults.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// TextAreaConfig describes a free text question.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver asks questions on behalf of the renderer. Tests substitute a
// scripted driver for the terminal one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// terminalDriver asks through survey on the process terminal. Messages go to
// out; prompts use stdio when out is a terminal file.
type terminalDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

func newSurveyDriver(out io.Writer, theme Theme) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	d := &terminalDriver{out: out}
	if f, ok := out.(*os.File); ok {
		d.opts = append(d.opts, survey.WithStdio(os.Stdin, f, os.Stderr))
	}
	if theme.QuestionIcon != "" {
		d.opts = append(d.opts, survey.WithIcons(func(icons *survey.IconSet) {
			icons.Question.Text = theme.QuestionIcon
		}))
	}
	return d
}

// ask runs one prompt into target, mapping Ctrl+C to ErrAborted.
func (d *terminalDriver) ask(ctx context.Context, prompt survey.Prompt, target any, extra ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := append(append([]survey.AskOpt(nil), d.opts...), extra...)
	err := survey.AskOne(prompt, target, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *terminalDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	var extra []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		extra = append(extra, survey.WithValidator(func(v any) error {
			s, _ := v.(string)
			return validate(s)
		}))
	}
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, extra...)
	return answer, err
}

func (d *terminalDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *terminalDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if label, ok := optionAt(cfg.Options, cfg.DefaultIndex); ok {
		prompt.Default = label
	}
	// survey writes the chosen index when the target is an int.
	var picked int
	if err := d.ask(ctx, prompt, &picked); err != nil {
		return 0, err
	}
	return picked, nil
}

func (d *terminalDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if defaults := optionLabels(cfg.Options, cfg.Defaults); len(defaults) > 0 {
		prompt.Default = defaults
	}
	var picked []int
	if err := d.ask(ctx, prompt, &picked); err != nil {
		return nil, err
	}
	return picked, nil
}

func (d *terminalDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *terminalDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func optionAt(options []string, index int) (string, bool) {
	if index < 0 || index >= len(options) {
		return "", false
	}
	return options[index], true
}

// optionLabels maps indices to labels, dropping those out of range.
func optionLabels(options []string, indices []int) []string {
	var labels []string
	for _, i := range indices {
		if label, ok := optionAt(options, i); ok {
			labels = append(labels, label)
		}
	}
	return labels
}

// optionIndex returns the position of value in options, or -1.
func optionIndex(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// optionIndices returns the positions of values in options, in option order.
func optionIndices(options, values []string) []int {
	var indices []int
	for i, option := range options {
		for _, v := range values {
			if option == v {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}
