// Package formation holds the formation regression scenarios F1-F10.
//
// Scenarios seed literal fixtures, drive the strip board through the UI
// interface and compare what the DOM and storage show with literal
// expectations. They never compute formation rules themselves.
package formation

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/tidwall/gjson"
)

// UI is the subset of the browser session the scenarios drive
type UI interface {
	Reload(ctx context.Context) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Select(ctx context.Context, selector, value string) error
	Count(ctx context.Context, selector string) (int, error)
	Text(ctx context.Context, selector string) (string, error)
	Value(ctx context.Context, selector string) (string, error)
	Visible(ctx context.Context, selector string) (bool, error)
	WaitVisible(ctx context.Context, selector string) error
	WaitHidden(ctx context.Context, selector string) error
}

// Store is the application's persisted state
type Store interface {
	Clear(ctx context.Context) error
	Seed(ctx context.Context, env *movement.Envelope) error
	SeedRaw(ctx context.Context, raw string) error
	Movements(ctx context.Context) (gjson.Result, error)
	WaitFor(ctx context.Context, cond func(gjson.Result) bool) (gjson.Result, bool, error)
	Movement(ctx context.Context, id int) (gjson.Result, error)
}

// Fixture movement ids
const (
	connectID    = 3
	mixedID      = 6
	inProgressID = 9
	malformedID  = 10
)

// Suite builds the formation scenarios over a UI and a Store
type Suite struct {
	ui    UI
	store Store
	sel   config.Selectors
	now   func() time.Time
}

// Option configures a Suite
type Option func(*Suite)

// WithClock sets the clock used for fixture dates and envelope timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Suite) {
		if now != nil {
			s.now = now
		}
	}
}

func New(ui UI, store Store, sel config.Selectors, opts ...Option) *Suite {
	s := &Suite{
		ui:    ui,
		store: store,
		sel:   sel,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scenarios returns F1-F10 in execution order
func (s *Suite) Scenarios() []runner.Scenario {
	return []runner.Scenario{
		{ID: "F1", Title: "Movement without formation has no badge", Run: s.noFormationNoBadge},
		{ID: "F2", Title: "Create 2-element formation via form", Run: s.createFormation},
		{ID: "F3", Title: "Seeded 3-element formation shows badge", Run: s.seededBadge},
		{ID: "F4", Title: "Expanded detail shows formation table", Run: s.expandedTable},
		{ID: "F5", Title: "Inline element edit persists", Run: s.inlineEdit},
		{ID: "F6", Title: "Completing an element recomputes WTC", Run: s.wtcRecompute},
		{ID: "F7", Title: "Edit dialog pre-fills element count", Run: s.editPrefill},
		{ID: "F8", Title: "Removing formation via edit dialog", Run: s.removeFormation},
		{ID: "F9", Title: "Duplicate resets element state", Run: s.duplicateResets},
		{ID: "F10", Title: "Malformed formation is normalized", Run: s.malformedNormalized},
	}
}

// reset clears storage, seeds the given movements and reloads the board
func (s *Suite) reset(ctx context.Context, movements ...*movement.Movement) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if len(movements) > 0 {
		if err := s.store.Seed(ctx, movement.NewEnvelope(s.now(), movements...)); err != nil {
			return err
		}
	}
	return s.reload(ctx)
}

func (s *Suite) reload(ctx context.Context) error {
	if err := s.ui.Reload(ctx); err != nil {
		return err
	}
	return s.ui.WaitVisible(ctx, s.sel.Ready)
}

// newMovement fills and saves the new-movement form. An empty count leaves
// the formation field untouched.
func (s *Suite) newMovement(ctx context.Context, callsign, reg, typ, wtc, count string) error {
	if err := s.ui.Click(ctx, s.sel.NewMovement); err != nil {
		return err
	}
	if err := s.ui.WaitVisible(ctx, s.sel.MovementModal); err != nil {
		return err
	}
	if err := s.ui.Fill(ctx, s.sel.FormCallsign, callsign); err != nil {
		return err
	}
	if err := s.ui.Fill(ctx, s.sel.FormRegistration, reg); err != nil {
		return err
	}
	if err := s.ui.Fill(ctx, s.sel.FormType, typ); err != nil {
		return err
	}
	if err := s.ui.Select(ctx, s.sel.FormWTC, wtc); err != nil {
		return err
	}
	if count != "" {
		if err := s.ui.Fill(ctx, s.sel.FormFormationCount, count); err != nil {
			return err
		}
	}
	if err := s.ui.Click(ctx, s.sel.FormSave); err != nil {
		return err
	}
	return s.ui.WaitHidden(ctx, s.sel.MovementModal)
}

// expand opens the detail panel of a strip and waits for the formation table
func (s *Suite) expand(ctx context.Context, id int) error {
	if err := s.ui.Click(ctx, within(s.sel.StripFor(id), s.sel.ExpandToggle)); err != nil {
		return err
	}
	return s.ui.WaitVisible(ctx, s.sel.FormationTable)
}

// saveElement edits one row of the formation table and saves it
func (s *Suite) saveElement(ctx context.Context, index int, status, depActual, arrActual string) error {
	row := nth(s.sel.ElementRow, index)
	if err := s.ui.Select(ctx, within(row, s.sel.ElementStatus), status); err != nil {
		return err
	}
	if depActual != "" {
		if err := s.ui.Fill(ctx, within(row, s.sel.ElementDepActual), depActual); err != nil {
			return err
		}
	}
	if arrActual != "" {
		if err := s.ui.Fill(ctx, within(row, s.sel.ElementArrActual), arrActual); err != nil {
			return err
		}
	}
	return s.ui.Click(ctx, within(row, s.sel.ElementSave))
}

// openEdit opens the edit dialog of a strip
func (s *Suite) openEdit(ctx context.Context, id int) error {
	if err := s.ui.Click(ctx, within(s.sel.StripFor(id), s.sel.EditButton)); err != nil {
		return err
	}
	return s.ui.WaitVisible(ctx, s.sel.EditModal)
}

// badgeText waits for the badge on a strip and returns its text
func (s *Suite) badgeText(ctx context.Context, id int) (string, error) {
	badge := within(s.sel.StripFor(id), s.sel.Badge)
	if err := s.ui.WaitVisible(ctx, badge); err != nil {
		return "", err
	}
	return s.ui.Text(ctx, badge)
}

func (s *Suite) badgeCount(ctx context.Context, id int) (int, error) {
	return s.ui.Count(ctx, within(s.sel.StripFor(id), s.sel.Badge))
}

// within scopes child to parent using the chained selector syntax
func within(parent, child string) string {
	return parent + " >> " + child
}

// nth selects the i-th match, zero based
func nth(selector string, i int) string {
	return fmt.Sprintf("%s >> nth=%d", selector, i)
}

// byCallsign returns the first movement with the given callsign code
func byCallsign(movements gjson.Result, callsign string) gjson.Result {
	for _, m := range movements.Array() {
		if m.Get("callsignCode").String() == callsign {
			return m
		}
	}
	return gjson.Result{}
}

// elementField reads one field of element i of a movement's formation
func elementField(m gjson.Result, i int, field string) gjson.Result {
	return m.Get(fmt.Sprintf("formation.elements.%d.%s", i, field))
}
