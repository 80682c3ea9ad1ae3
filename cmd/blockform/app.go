package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockform"
	"github.com/goliatone/go-blockform/internal/config"
	"github.com/goliatone/go-blockform/internal/logging"
	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/geo"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/renderers/tui"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// app carries the flag values and the state built in the persistent pre-run.
type app struct {
	configPath        string
	dataDir           string
	backendURL        string
	lang              string
	uid               string
	freeCode          string
	submitted         bool
	forceTranslations bool
	logLevel          string

	cfg    *config.Config
	logger *zap.Logger

	// isTerminal and driver are replaced in tests.
	isTerminal func() bool
	driver     tui.PromptDriver
}

func newApp() *app {
	return &app{
		isTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.Backend.DataDir = a.dataDir
	}
	if a.backendURL != "" {
		cfg.Backend.URL = a.backendURL
	}
	if a.lang != "" {
		cfg.Language = a.lang
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, _, err := logging.New(cfg.Logging.Level, logging.WithConsoleEncoding())
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// client prefers the data directory over the remote service.
func (a *app) client() (backend.Client, error) {
	if dir := strings.TrimSpace(a.cfg.Backend.DataDir); dir != "" {
		return blockform.NewFileBackend(dir, a.logger)
	}
	return blockform.NewHTTPBackend(a.cfg.Backend.URL,
		backend.WithTimeout(a.cfg.Backend.Timeout),
		backend.WithCallback(a.cfg.Backend.Callback),
		backend.WithLogger(a.logger),
	)
}

func (a *app) params() orchestrator.Params {
	lang := strings.ToLower(strings.TrimSpace(a.cfg.Language))
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	return orchestrator.Params{
		Lang:              lang,
		UID:               strings.TrimSpace(a.uid),
		Submitted:         a.submitted,
		FreeCode:          strings.TrimSpace(a.freeCode),
		ForceTranslations: a.forceTranslations,
	}
}

// session wires the configured backend, caches, locator and finance engine
// into a started session.
func (a *app) session(ctx context.Context) (*orchestrator.Session, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	policy, err := a.cfg.Policy()
	if err != nil {
		return nil, err
	}

	var store i18n.Store = i18n.NewMemoryStore()
	if path := strings.TrimSpace(a.cfg.Translations.CachePath); path != "" {
		store = i18n.NewFileStore(path)
	}
	cache := i18n.NewCache(client.Translations,
		i18n.WithStore(store),
		i18n.WithTTL(a.cfg.Translations.TTL),
		i18n.WithLogger(a.logger),
	)
	industries := taxonomy.NewService(client.Industries,
		taxonomy.WithServiceLogger(a.logger),
		taxonomy.WithValidation(true),
	)

	options := []orchestrator.Option{
		orchestrator.WithTranslationCache(cache),
		orchestrator.WithTaxonomy(industries),
		orchestrator.WithEngine(finance.New(finance.WithPeriods(a.cfg.Periods...))),
		orchestrator.WithSubmitPolicy(policy),
		orchestrator.WithLogger(a.logger),
	}
	if a.cfg.Link != "" {
		options = append(options, orchestrator.WithLink(a.cfg.Link))
	}
	if endpoint := strings.TrimSpace(a.cfg.Geo.Endpoint); endpoint != "" {
		options = append(options, orchestrator.WithLocator(geo.NewIPLocator(
			geo.WithEndpoint(endpoint),
			geo.WithTimeout(a.cfg.Backend.Timeout),
		)))
	}

	session, err := blockform.Start(ctx, client, a.params(), options...)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}
