package formation

import (
	"context"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/abdul-hamid-achik/stripcheck/packages/storage"
	"github.com/tidwall/gjson"
)

// F3
func (s *Suite) seededBadge(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx, movement.Connect(connectID, s.now())); err != nil {
		return err
	}

	text, err := s.badgeText(ctx, connectID)
	if err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}
	c.Check("badge text", assertions.OpContains, "3", text)
	return nil
}

// F4
func (s *Suite) expandedTable(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx, movement.Connect(connectID, s.now())); err != nil {
		return err
	}
	if err := s.expand(ctx, connectID); err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	rows, err := s.ui.Count(ctx, s.sel.ElementRow)
	if err != nil {
		return err
	}
	c.Check("element rows", assertions.OpEquals, 3, rows)

	saves, err := s.ui.Count(ctx, within(s.sel.ElementRow, s.sel.ElementSave))
	if err != nil {
		return err
	}
	c.Check("element save controls", assertions.OpEquals, 3, saves)
	return nil
}

// F5
func (s *Suite) inlineEdit(ctx context.Context, c *runner.Case) error {
	seeded := movement.Connect(connectID, s.now())
	if err := s.reset(ctx, seeded); err != nil {
		return err
	}
	if err := s.expand(ctx, connectID); err != nil {
		return err
	}
	if err := s.saveElement(ctx, 1, movement.StatusCompleted, "10:15", "10:55"); err != nil {
		return err
	}

	if _, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		return elementField(storage.ByID(ms, connectID), 1, "status").String() == movement.StatusCompleted
	}); err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	m, err := s.store.Movement(ctx, connectID)
	if err != nil {
		return err
	}
	c.Check("element[1].status", assertions.OpEquals, movement.StatusCompleted, elementField(m, 1, "status").String())
	c.Check("element[1].depActual", assertions.OpEquals, "10:15", elementField(m, 1, "depActual").String())
	c.Check("element[1].arrActual", assertions.OpEquals, "10:55", elementField(m, 1, "arrActual").String())
	checkElementUnchanged(c, m, 0, seeded.Formation.Elements[0])
	checkElementUnchanged(c, m, 2, seeded.Formation.Elements[2])
	return nil
}

// F6
func (s *Suite) wtcRecompute(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx, movement.Mixed(mixedID, s.now())); err != nil {
		return err
	}
	if err := s.expand(ctx, mixedID); err != nil {
		return err
	}
	if err := s.saveElement(ctx, 0, movement.StatusCompleted, "10:00", "10:40"); err != nil {
		return err
	}

	if _, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		m := storage.ByID(ms, mixedID)
		return elementField(m, 0, "status").String() == movement.StatusCompleted &&
			m.Get("formation.wtcCurrent").String() == movement.WTCLight
	}); err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	m, err := s.store.Movement(ctx, mixedID)
	if err != nil {
		return err
	}
	c.Check("element[0].status", assertions.OpEquals, movement.StatusCompleted, elementField(m, 0, "status").String())
	c.Check("wtcCurrent", assertions.OpEquals, movement.WTCLight, m.Get("formation.wtcCurrent").String())
	c.Check("wtcMax", assertions.OpEquals, movement.WTCMedium, m.Get("formation.wtcMax").String())
	return nil
}

// checkElementUnchanged compares every field of a stored element with its fixture
func checkElementUnchanged(c *runner.Case, m gjson.Result, i int, want *movement.Element) {
	fields := []struct {
		name string
		want string
	}{
		{"callsign", want.Callsign},
		{"reg", want.Reg},
		{"type", want.Type},
		{"wtc", want.WTC},
		{"status", want.Status},
		{"depActual", want.DepActual},
		{"arrActual", want.ArrActual},
	}
	for _, f := range fields {
		c.Check(elementSubject(i, f.name), assertions.OpEquals, f.want, elementField(m, i, f.name).String())
	}
}
