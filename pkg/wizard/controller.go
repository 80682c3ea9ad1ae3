package wizard

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
)

// State is the transient UI state of the subform.
type State struct {
	OpenRow         string
	SelectedPeriods []string
	Manual          bool
}

// IsOpen reports whether row is the open row.
func (s State) IsOpen(row string) bool {
	return s.OpenRow != "" && s.OpenRow == row
}

// IsSelected reports whether period is selected.
func (s State) IsSelected(period string) bool {
	for _, p := range s.SelectedPeriods {
		if p == period {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	s.SelectedPeriods = append([]string(nil), s.SelectedPeriods...)
	return s
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller tracks the open row and period selection. It is owned by a
// single session and is not safe for concurrent use.
type Controller struct {
	engine *finance.Engine
	keys   finance.Keys
	rows   []Row
	logger *zap.Logger

	mounted bool
	state   State
}

// New constructs a Controller over engine's keys and periods.
func New(engine *finance.Engine, options ...Option) *Controller {
	if engine == nil {
		engine = finance.New()
	}
	c := &Controller{
		engine: engine,
		keys:   engine.Keys(),
		rows:   Chain(engine.Keys()),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Rows returns the chain definition.
func (c *Controller) Rows() []Row {
	return append([]Row(nil), c.rows...)
}

// Mounted reports whether Mount has run.
func (c *Controller) Mounted() bool {
	return c.mounted
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.clone()
}

// Mount initialises the state: the first row opens and all periods are
// selected, unless set already stores a period selection.
func (c *Controller) Mount(set *answers.Set) State {
	c.mounted = true
	c.state = State{
		OpenRow:         c.rows[0].ID,
		SelectedPeriods: c.periodsFrom(set),
	}
	c.logger.Debug("wizard mounted",
		zap.String("open", c.state.OpenRow),
		zap.Strings("periods", c.state.SelectedPeriods))
	return c.State()
}

// Unmount discards the state.
func (c *Controller) Unmount() {
	c.mounted = false
	c.state = State{}
}

// periodsFrom reads the stored selection, keeping declared period order and
// dropping unknown entries. Without a stored selection every period is
// selected.
func (c *Controller) periodsFrom(set *answers.Set) []string {
	value, ok := set.Get(c.keys.Periods)
	if !ok {
		return c.engine.Periods()
	}
	var stored []string
	if list, isList := value.List(); isList {
		stored = list
	} else if s, isStr := value.Str(); isStr {
		stored = []string{s}
	} else if n, isNum := value.Num(); isNum {
		stored = []string{strconv.FormatFloat(n, 'f', -1, 64)}
	} else {
		return c.engine.Periods()
	}

	wanted := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		wanted[p] = struct{}{}
	}
	out := []string{}
	for _, p := range c.engine.Periods() {
		if _, ok := wanted[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Progress evaluates the chain against set for the selected periods.
func (c *Controller) Progress(set *answers.Set) Progress {
	return Evaluate(c.keys, c.rows, set, c.state.SelectedPeriods)
}

// AnswersChanged clears a manual toggle and opens the first incomplete
// eligible row, or closes the wizard when every row is complete. A period
// selection stored in set replaces the current one.
func (c *Controller) AnswersChanged(set *answers.Set) State {
	if !c.mounted {
		return State{}
	}
	if set.Has(c.keys.Periods) {
		c.state.SelectedPeriods = c.periodsFrom(set)
	}
	next, _ := c.Progress(set).FirstIncomplete()
	if next != c.state.OpenRow || c.state.Manual {
		c.logger.Debug("wizard advanced",
			zap.String("from", c.state.OpenRow),
			zap.String("to", next),
			zap.Bool("was_manual", c.state.Manual))
	}
	c.state.OpenRow = next
	c.state.Manual = false
	return c.State()
}

// Toggle opens row, or closes it when it is already open.
func (c *Controller) Toggle(set *answers.Set, row string) (State, error) {
	if err := c.checkRow(set, row); err != nil {
		return c.State(), err
	}
	if c.state.OpenRow == row {
		c.state.OpenRow = ""
	} else {
		c.state.OpenRow = row
	}
	c.state.Manual = true
	return c.State(), nil
}

// Focus opens row without closing it when already open, as focusing one of
// its inputs does.
func (c *Controller) Focus(set *answers.Set, row string) (State, error) {
	if err := c.checkRow(set, row); err != nil {
		return c.State(), err
	}
	if c.state.OpenRow != row {
		c.state.OpenRow = row
		c.state.Manual = true
	}
	return c.State(), nil
}

func (c *Controller) checkRow(set *answers.Set, row string) error {
	if !c.mounted {
		return ErrNotMounted
	}
	if !c.hasRow(row) {
		return fmt.Errorf("%w: %q", ErrUnknownRow, row)
	}
	if !c.Progress(set).IsEligible(row) {
		return fmt.Errorf("%w: %q", ErrNotEligible, row)
	}
	return nil
}

func (c *Controller) hasRow(id string) bool {
	for _, row := range c.rows {
		if row.ID == id {
			return true
		}
	}
	return false
}

// TogglePeriod adds or removes period from the selection, keeping declared
// order. The caller stores PeriodsValue in the answers so the selection
// survives a submit and prefill.
func (c *Controller) TogglePeriod(period string) (State, error) {
	if !c.mounted {
		return c.State(), ErrNotMounted
	}
	if !c.engine.HasPeriod(period) {
		return c.State(), fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
	selected := make(map[string]bool, len(c.state.SelectedPeriods))
	for _, p := range c.state.SelectedPeriods {
		selected[p] = true
	}
	selected[period] = !selected[period]

	next := []string{}
	for _, p := range c.engine.Periods() {
		if selected[p] {
			next = append(next, p)
		}
	}
	c.state.SelectedPeriods = next
	return c.State(), nil
}

// PeriodsValue is the answer value mirroring the current selection.
func (c *Controller) PeriodsValue() answers.Value {
	return answers.Strings(c.state.SelectedPeriods...)
}

// InputEnabled reports whether the cell stored under key accepts input: the
// row must be eligible, the period selected, and executive compensation
// additionally requires the single-manager answer to be yes.
func (c *Controller) InputEnabled(set *answers.Set, key string) bool {
	if key == c.keys.SingleManager {
		return c.mounted && c.Progress(set).IsEligible(c.keys.Compensation)
	}
	metric, period, ok := c.engine.SplitCell(key)
	if !ok || !c.mounted {
		return false
	}
	if !c.state.IsSelected(period) || !c.Progress(set).IsEligible(metric) {
		return false
	}
	return c.rowInputsEnabled(metric, set)
}

// Manages reports whether key belongs to the wizard.
func (c *Controller) Manages(key string) bool {
	return key == c.keys.SingleManager || key == c.keys.Periods || c.engine.IsNumericCell(key)
}

func (c *Controller) rowInputsEnabled(metric string, set *answers.Set) bool {
	if metric != c.keys.Compensation {
		return true
	}
	single, _ := set.Str(c.keys.SingleManager)
	return single == c.keys.Yes
}
