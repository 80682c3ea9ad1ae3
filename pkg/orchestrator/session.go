package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/geo"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
	"github.com/goliatone/go-blockform/pkg/visibility"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
	StatusError      Status = "error"
)

// SubmitPolicy decides how a failed submission is reported.
type SubmitPolicy int

const (
	// OptimisticSubmit logs transport errors and still marks the session
	// submitted.
	OptimisticSubmit SubmitPolicy = iota
	// AcknowledgedSubmit returns transport errors and unlocks the session
	// for another attempt.
	AcknowledgedSubmit
)

// String returns the configuration name of the policy.
func (p SubmitPolicy) String() string {
	if p == AcknowledgedSubmit {
		return "acknowledged"
	}
	return "optimistic"
}

// ParseSubmitPolicy maps "optimistic" and "acknowledged" onto policies.
func ParseSubmitPolicy(raw string) (SubmitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "optimistic":
		return OptimisticSubmit, nil
	case "acknowledged":
		return AcknowledgedSubmit, nil
	default:
		return OptimisticSubmit, fmt.Errorf("orchestrator: unknown submit policy %q", raw)
	}
}

// Option customises a Session.
type Option func(*Session)

// WithTranslationCache replaces the default in-memory translation cache.
func WithTranslationCache(cache *i18n.Cache) Option {
	return func(s *Session) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithTaxonomy replaces the default taxonomy service.
func WithTaxonomy(service *taxonomy.Service) Option {
	return func(s *Session) {
		if service != nil {
			s.taxonomy = service
		}
	}
}

// WithLocator enables country autofill for the first country field.
func WithLocator(locator geo.Locator) Option {
	return func(s *Session) {
		s.locator = locator
	}
}

// WithLogger sets the logger shared with the evaluator and wizard.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmitPolicy selects how submission failures are handled.
func WithSubmitPolicy(policy SubmitPolicy) Option {
	return func(s *Session) {
		s.policy = policy
	}
}

// WithEngine sets the finance engine (keys and reporting periods).
func WithEngine(engine *finance.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithLink sets the page URL used for edit links.
func WithLink(base string) Option {
	return func(s *Session) {
		s.link = strings.TrimSpace(base)
	}
}

// WithIDGenerator overrides the session identifier generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Session drives one questionnaire from load to submit. All methods are safe
// for concurrent use; answer writes are serialised.
type Session struct {
	client   backend.Client
	params   Params
	cache    *i18n.Cache
	taxonomy *taxonomy.Service
	locator  geo.Locator
	logger   *zap.Logger
	policy   SubmitPolicy
	engine   *finance.Engine
	link     string
	newID    func() string

	evaluator *visibility.Evaluator
	wizard    *wizard.Controller
	store     *answers.Store

	mu       sync.Mutex
	status   Status
	err      error
	id       string
	lang     string
	langSeq  uint64
	form     model.Form
	compiled []visibility.Compiled
	bundle   *i18n.Bundle
	index    *taxonomy.Index
}

// New prepares a session against client. Start loads it.
func New(client backend.Client, params Params, options ...Option) *Session {
	s := &Session{
		client: client,
		params: params,
		logger: zap.NewNop(),
		engine: finance.New(),
		newID:  uuid.NewString,
		store:  answers.NewStore(nil),
		status: StatusLoading,
		lang:   params.Lang,
		bundle: i18n.NewBundle(nil, i18n.DefaultLanguage),
		index:  taxonomy.NewIndex(nil),
	}
	if s.lang == "" {
		s.lang = i18n.DefaultLanguage
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.cache == nil {
		s.cache = i18n.NewCache(client.Translations, i18n.WithLogger(s.logger))
	}
	if s.taxonomy == nil {
		s.taxonomy = taxonomy.NewService(client.Industries, taxonomy.WithServiceLogger(s.logger))
	}
	s.evaluator = visibility.New(visibility.WithLogger(s.logger))
	s.wizard = wizard.New(s.engine, wizard.WithLogger(s.logger))
	return s
}

// Start fetches declarations, translations, and the taxonomy concurrently,
// then applies prefill or assigns a fresh identifier. Any failure moves the
// session to StatusError and is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusLoading && s.status != StatusError {
		s.mu.Unlock()
		return nil
	}
	s.status, s.err = StatusLoading, nil
	s.mu.Unlock()

	if s.params.ForceTranslations {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("translation cache invalidation failed", zap.Error(err))
		}
	}

	var (
		blocks  []model.FieldDeclaration
		catalog i18n.Catalog
		index   *taxonomy.Index
	)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if blocks, err = s.client.Blocks(gctx); err != nil {
			return fmt.Errorf("orchestrator: load blocks: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		if catalog, err = s.cache.Load(gctx); err != nil {
			return fmt.Errorf("orchestrator: load translations: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		if index, err = s.taxonomy.Index(gctx); err != nil {
			return fmt.Errorf("orchestrator: load industries: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return s.fail(err)
	}

	form := model.NewForm(blocks)
	if err := form.Validate(); err != nil {
		s.logger.Warn("field declarations invalid", zap.Error(err))
	}

	initial, id, err := s.initialAnswers(ctx)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.form = form
	s.compiled = s.evaluator.CompileForm(form)
	s.bundle = i18n.NewBundle(catalog, i18n.DefaultLanguage)
	s.index = index
	s.id = id
	s.status = StatusReady
	if s.params.Submitted {
		s.status = StatusSubmitted
	}
	s.store.Replace(initial)
	s.refresh(s.store.Snapshot())
	s.mu.Unlock()

	s.logger.Info("session ready",
		zap.String("uuid", id),
		zap.String("lang", s.Lang()),
		zap.Int("fields", len(form.Fields)),
		zap.Bool("update_mode", s.params.UpdateMode()),
		zap.Bool("free_mode", s.params.FreeMode()))

	if s.Status() == StatusReady {
		s.autofillCountry(ctx)
	}
	return nil
}

func (s *Session) initialAnswers(ctx context.Context) (*answers.Set, string, error) {
	uid := s.params.UID
	if uid == "" {
		return answers.Empty(), s.newID(), nil
	}
	if s.params.Submitted {
		return answers.Empty(), uid, nil
	}
	prefill, err := s.client.Prefill(ctx, uid)
	if errors.Is(err, backend.ErrNoPrefill) {
		s.logger.Info("no prefill for session", zap.String("uuid", uid))
		return answers.Empty(), uid, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: load prefill: %w", err)
	}
	return answers.Normalize(prefill.Answers, s.engine.IsNumericCell), uid, nil
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.status, s.err = StatusError, err
	s.mu.Unlock()
	s.logger.Error("session failed to start", zap.Error(err))
	return err
}

// autofillCountry answers the first country field from the locator when the
// respondent has not answered it. Locator failures are ignored.
func (s *Session) autofillCountry(ctx context.Context) {
	if s.locator == nil {
		return
	}
	s.mu.Lock()
	field, ok := s.form.FirstOfType(model.FieldTypeCountry)
	lang := s.lang
	s.mu.Unlock()
	if !ok || s.store.Snapshot().Has(field.Key) {
		return
	}

	code, err := s.locator.CountryCode(ctx)
	if err != nil {
		s.logger.Debug("country lookup failed", zap.Error(err))
		return
	}
	country, found := geo.FindCountry(lang, code)
	if !found {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusReady {
		return
	}
	next := s.store.Update(func(cur *answers.Set) *answers.Set {
		if cur.Has(field.Key) {
			return cur
		}
		return cur.With(field.Key, answers.String(country.Code))
	})
	s.refresh(next)
}

// editable reports why the session refuses writes, if it does.
func (s *Session) editable() error {
	switch s.status {
	case StatusReady:
		return nil
	case StatusSubmitting, StatusSubmitted:
		return ErrLocked
	default:
		return ErrNotStarted
	}
}

// SetAnswer stores value under key and returns the new snapshot. Wizard cells
// pass through the finance write rules and must be enabled.
func (s *Session) SetAnswer(key string, value answers.Value) (*answers.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return s.store.Snapshot(), err
	}
	cur := s.store.Snapshot()
	if s.wizard.Manages(key) && key != s.engine.Keys().Periods && !s.wizard.InputEnabled(cur, key) {
		return cur, fmt.Errorf("%w: %q", ErrInputDisabled, key)
	}
	next := s.store.Update(func(cur *answers.Set) *answers.Set {
		return s.engine.Write(cur, key, value)
	})
	s.refresh(next)
	return next, nil
}

// refresh mounts the wizard while its field is visible, discards its state
// when hidden, and lets it react to the new answers. Callers hold s.mu.
func (s *Session) refresh(set *answers.Set) {
	visible := false
	for _, c := range s.evaluator.Filter(s.compiled, set, s.visibilityContext(set)) {
		if c.Field.Type == model.FieldTypeFinancialWizard {
			visible = true
			break
		}
	}
	switch {
	case visible && !s.wizard.Mounted():
		s.wizard.Mount(set)
	case !visible && s.wizard.Mounted():
		s.wizard.Unmount()
	}
	s.wizard.AnswersChanged(set)
}

// visibilityContext builds the visibility context, adding the tags of the chosen
// industry leaves.
func (s *Session) visibilityContext(set *answers.Set) visibility.Context {
	ctx := s.params.Context()
	field, ok := s.form.FirstOfType(model.FieldTypeIndustries)
	if !ok {
		return ctx
	}
	value := set.Lookup(field.Key)
	codes, isList := value.List()
	if !isList {
		if code, isStr := value.Str(); isStr && code != "" {
			codes = []string{code}
		}
	}
	var tags []string
	found := false
	for _, code := range codes {
		if leafTags, ok := s.index.Tags(code); ok {
			found = true
			tags = append(tags, leafTags...)
		}
	}
	if found {
		ctx = ctx.WithLeaf(tags)
	}
	return ctx
}

// TogglePeriod flips one reporting period and stores the selection.
func (s *Session) TogglePeriod(period string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return s.wizard.State(), err
	}
	if _, err := s.wizard.TogglePeriod(period); err != nil {
		return s.wizard.State(), fmt.Errorf("orchestrator: %w", err)
	}
	next := s.store.Set(s.engine.Keys().Periods, s.wizard.PeriodsValue())
	s.refresh(next)
	return s.wizard.State(), nil
}

// ToggleRow opens or closes a wizard row.
func (s *Session) ToggleRow(row string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return s.wizard.State(), err
	}
	state, err := s.wizard.Toggle(s.store.Snapshot(), row)
	if err != nil {
		return state, fmt.Errorf("orchestrator: %w", err)
	}
	return state, nil
}

// FocusRow opens a wizard row as focusing one of its inputs does.
func (s *Session) FocusRow(row string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return s.wizard.State(), err
	}
	state, err := s.wizard.Focus(s.store.Snapshot(), row)
	if err != nil {
		return state, fmt.Errorf("orchestrator: %w", err)
	}
	return state, nil
}

// SetLanguage switches the display language without touching answers. When
// calls overlap, the most recent call wins.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	s.mu.Lock()
	s.langSeq++
	seq := s.langSeq
	s.mu.Unlock()

	catalog, err := s.cache.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.langSeq {
		s.logger.Debug("language change superseded", zap.String("lang", lang))
		return nil
	}
	if err != nil {
		return fmt.Errorf("orchestrator: load translations: %w", err)
	}
	s.lang = lang
	s.bundle = i18n.NewBundle(catalog, i18n.DefaultLanguage)
	return nil
}

// Submit posts the answers. The session is locked while the request runs and
// stays locked afterwards unless AcknowledgedSubmit sees a failure.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.status = StatusSubmitting
	submission := backend.Submission{
		UUID:       s.id,
		Lang:       s.lang,
		Link:       s.editLink(),
		FreeCode:   s.params.FreeCode,
		UpdateMode: backend.Flag(s.params.UpdateMode()),
		FreeMode:   backend.Flag(s.params.FreeMode()),
		Answers:    s.store.Snapshot(),
	}
	s.mu.Unlock()

	err := s.client.Submit(ctx, submission)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.policy == AcknowledgedSubmit {
			s.status = StatusReady
			return fmt.Errorf("orchestrator: submit: %w", err)
		}
		s.logger.Warn("submission failed; reporting submitted", zap.String("uuid", s.id), zap.Error(err))
	}
	s.status = StatusSubmitted
	s.logger.Info("submission sent", zap.String("uuid", s.id), zap.Int("answers", submission.Answers.Len()))
	return nil
}

// Link is the edit link carried in the submission payload.
func (s *Session) Link() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLink()
}

func (s *Session) editLink() string {
	return s.link + "?" + url.Values{"uid": {s.id}}.Encode()
}

// SubmittedLink is the link shown on the thank-you page. It reopens the
// session for editing in the same language and mode.
func (s *Session) SubmittedLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submittedLink()
}

func (s *Session) submittedLink() string {
	values := url.Values{"uid": {s.id}, "lang": {s.lang}}
	if s.params.FreeCode != "" {
		values.Set("free_code", s.params.FreeCode)
	}
	return s.link + "?" + values.Encode()
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error that moved the session to StatusError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ID returns the session identifier sent as uuid.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Lang returns the display language.
func (s *Session) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Params returns the parsed session inputs.
func (s *Session) Params() Params {
	return s.params
}

// Answers returns the current snapshot.
func (s *Session) Answers() *answers.Set {
	return s.store.Snapshot()
}

// Subscribe registers a listener for answer changes. Listeners run inside
// the write and must not call back into the session.
func (s *Session) Subscribe(listener answers.Listener) {
	s.store.Subscribe(listener)
}

// Engine returns the finance engine.
func (s *Session) Engine() *finance.Engine {
	return s.engine
}

// WizardState returns the wizard's transient state.
func (s *Session) WizardState() wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.State()
}

// Translate returns the translation of key in the session language, or
// fallback.
func (s *Session) Translate(key, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return i18n.Text(s.bundle, s.lang, key, fallback)
}

// Languages lists the languages the translation catalog covers.
func (s *Session) Languages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle.Catalog().Languages()
}
