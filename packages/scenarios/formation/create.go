package formation

import (
	"context"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/tidwall/gjson"
)

// F1
func (s *Suite) noFormationNoBadge(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx); err != nil {
		return err
	}
	if err := s.newMovement(ctx, movement.CallsignSolo, "ZZ200", "HAWK", movement.WTCLight, ""); err != nil {
		return err
	}

	movements, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		return byCallsign(ms, movement.CallsignSolo).Exists()
	})
	if err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	m := byCallsign(movements, movement.CallsignSolo)
	if !c.Check("stored movement", assertions.OpExists, nil, m) {
		return nil
	}
	c.Check("stored formation", assertions.OpNotExists, nil, m.Get("formation"))

	n, err := s.badgeCount(ctx, int(m.Get("id").Int()))
	if err != nil {
		return err
	}
	c.Check("badge count", assertions.OpEquals, 0, n)
	return nil
}

// F2
func (s *Suite) createFormation(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx); err != nil {
		return err
	}
	if err := s.newMovement(ctx, movement.CallsignPair, "ZZ201", "HAWK", movement.WTCLight, "2"); err != nil {
		return err
	}

	movements, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		return len(byCallsign(ms, movement.CallsignPair).Get("formation.elements").Array()) == 2
	})
	if err != nil {
		return err
	}

	m := byCallsign(movements, movement.CallsignPair)
	if !c.Check("stored movement", assertions.OpExists, nil, m) {
		return nil
	}
	c.Check("stored elements", assertions.OpLength, 2, m.Get("formation.elements"))
	id := int(m.Get("id").Int())

	text, err := s.badgeText(ctx, id)
	if err != nil {
		return err
	}
	c.Check("badge text", assertions.OpContains, "2", text)
	if err := c.Screenshot(ctx, "before-reload"); err != nil {
		return err
	}

	if err := s.reload(ctx); err != nil {
		return err
	}
	text, err = s.badgeText(ctx, id)
	if err != nil {
		return err
	}
	c.Check("badge text after reload", assertions.OpContains, "2", text)
	return c.Screenshot(ctx, "after-reload")
}
