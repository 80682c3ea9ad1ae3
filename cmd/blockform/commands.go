package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockform"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/renderers/tui"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// errNoTerminal is returned by run when stdin is not interactive.
var errNoTerminal = errors.New("run: an interactive terminal is required (use render for snapshots)")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "blockform",
		Short: "Conditional questionnaire sessions from the terminal",
		Long: `blockform loads a questionnaire (blocks, translations, industries and
prefill answers) from a data directory or the remote form service and
drives a session: interactively, as an HTML snapshot, or as a P&L preview.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "blockform.yaml", "configuration file")
	flags.StringVarP(&a.dataDir, "data", "d", "", "data directory (overrides backend.data_dir)")
	flags.StringVar(&a.backendURL, "backend", "", "remote form service URL (overrides backend.url)")
	flags.StringVarP(&a.lang, "lang", "l", "", "session language")
	flags.StringVarP(&a.uid, "uid", "u", "", "session uid; loads prefill answers and enables update mode")
	flags.StringVar(&a.freeCode, "free-code", "", "free code; enables free mode")
	flags.BoolVar(&a.submitted, "submitted", false, "open the session in the submitted state")
	flags.BoolVar(&a.forceTranslations, "force-translations", false, "bypass the translation cache")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newRunCmd(a), newRenderCmd(a), newPreviewCmd(a), newTaxonomyCmd(a))
	return root
}

func newRunCmd(a *app) *cobra.Command {
	var (
		format       string
		askLanguage  bool
		confirmation bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer the questionnaire interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.driver == nil && !a.isTerminal() {
				return errNoTerminal
			}
			ctx := cmd.Context()
			session, err := a.session(ctx)
			if err != nil {
				return err
			}

			renderer, err := tui.New(
				tui.WithPromptDriver(a.driver),
				tui.WithOutput(cmd.ErrOrStderr()),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLanguagePrompt(askLanguage),
				tui.WithSubmitConfirmation(confirmation),
				tui.WithTheme(tui.Theme{InfoPrefix: infoColor.Sprint("› "), ErrorPrefix: errorColor.Sprint("✗ "), QuestionIcon: labelColor.Sprint("?")}),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, session, render.RenderOptions{})
			if err != nil {
				if errors.Is(err, tui.ErrAborted) {
					warnf(cmd.ErrOrStderr(), "aborted; nothing was submitted")
					return nil
				}
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			reportStatus(cmd.ErrOrStderr(), session)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "answer output: json or pretty")
	cmd.Flags().BoolVar(&askLanguage, "ask-language", false, "offer a language choice before the first question")
	cmd.Flags().BoolVar(&confirmation, "confirm", true, "confirm before submitting")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		rendererName string
		output       string
		action       string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the current form state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			registry, err := blockform.NewRenderers()
			if err != nil {
				return err
			}
			renderer, err := registry.Get(rendererName)
			if err != nil {
				return err
			}
			if renderer.Name() != "html" {
				return fmt.Errorf("render: %s is interactive; use the run command", renderer.Name())
			}

			session, err := a.session(ctx)
			if err != nil {
				return err
			}
			page, err := renderer.Render(ctx, session, render.RenderOptions{
				Action: action,
				Hidden: render.SessionFields(session.ID(), session.Params(), session.Lang()),
			})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			if err := os.WriteFile(output, page, 0o644); err != nil {
				return fmt.Errorf("render: write %s: %w", output, err)
			}
			successf(cmd.ErrOrStderr(), "form written to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "html", "renderer name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var periods []string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the P&L preview for the session answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if len(periods) == 0 {
				periods = session.WizardState().SelectedPeriods
			}
			table := session.Engine().Preview(session.Answers(), periods)
			writePreview(cmd.OutOrStdout(), session, table)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&periods, "periods", "p", nil, "periods to show (default: selected periods)")
	return cmd
}

func newTaxonomyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy [code]",
		Short: "Print the industry tree or the path to a leaf code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(a.cfg.Backend.Timeout))
			defer cancel()

			client, err := a.client()
			if err != nil {
				return err
			}
			index, err := taxonomy.NewService(client.Industries, taxonomy.WithValidation(true)).Index(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				writeTree(out, index.Tree())
				return nil
			}

			code := strings.TrimSpace(args[0])
			leaf, ok := index.Leaf(code)
			if !ok {
				return fmt.Errorf("taxonomy: no leaf with code %q", code)
			}
			path, _ := index.Ancestors(code)
			fmt.Fprintln(out, strings.Join(append(path, leaf.Label), " › "))
			if tags, ok := index.Tags(code); ok && len(tags) > 0 {
				fmt.Fprintln(out, labelColor.Sprint("tags: ")+strings.Join(tags, ", "))
			}
			return nil
		},
	}
	return cmd
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

func reportStatus(w io.Writer, session *orchestrator.Session) {
	switch session.Status() {
	case orchestrator.StatusSubmitted:
		successf(w, "submitted; edit link: %s", session.SubmittedLink())
	default:
		warnf(w, "not submitted (status %s)", session.Status())
	}
}
