package formation

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/abdul-hamid-achik/stripcheck/packages/storage"
	"github.com/tidwall/gjson"
)

// F7
func (s *Suite) editPrefill(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx, movement.Connect(connectID, s.now())); err != nil {
		return err
	}
	if err := s.openEdit(ctx, connectID); err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	value, err := s.ui.Value(ctx, s.sel.EditFormationCount)
	if err != nil {
		return err
	}
	c.Check("edit formation count", assertions.OpEquals, "3", strings.TrimSpace(value))
	return nil
}

// F8
func (s *Suite) removeFormation(ctx context.Context, c *runner.Case) error {
	if err := s.reset(ctx, movement.Connect(connectID, s.now())); err != nil {
		return err
	}
	if err := s.openEdit(ctx, connectID); err != nil {
		return err
	}
	if err := s.ui.Fill(ctx, s.sel.EditFormationCount, ""); err != nil {
		return err
	}
	if err := s.ui.Click(ctx, s.sel.EditSave); err != nil {
		return err
	}
	if err := s.ui.WaitHidden(ctx, s.sel.EditModal); err != nil {
		return err
	}

	if _, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		m := storage.ByID(ms, connectID)
		return m.Exists() && !hasFormation(m)
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
	if !c.Check("stored movement", assertions.OpExists, nil, m) {
		return nil
	}
	c.Check("stored formation", assertions.OpNotExists, nil, m.Get("formation"))

	n, err := s.badgeCount(ctx, connectID)
	if err != nil {
		return err
	}
	c.Check("badge count", assertions.OpEquals, 0, n)
	return nil
}

// F9
func (s *Suite) duplicateResets(ctx context.Context, c *runner.Case) error {
	original := movement.InProgress(inProgressID, s.now())
	if err := s.reset(ctx, original); err != nil {
		return err
	}
	if err := s.ui.Click(ctx, within(s.sel.StripFor(inProgressID), s.sel.DuplicateButton)); err != nil {
		return err
	}

	// Some boards open the copy in the new-movement dialog before saving it
	open, err := s.ui.Visible(ctx, s.sel.MovementModal)
	if err != nil {
		return err
	}
	if open {
		if err := s.ui.Click(ctx, s.sel.FormSave); err != nil {
			return err
		}
		if err := s.ui.WaitHidden(ctx, s.sel.MovementModal); err != nil {
			return err
		}
	}

	movements, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		return duplicateOf(ms, original).Exists()
	})
	if err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	dup := duplicateOf(movements, original)
	if !c.Check("duplicate movement", assertions.OpExists, nil, dup) {
		return nil
	}
	c.Notef("duplicate id %d", dup.Get("id").Int())
	c.Check("duplicate id", assertions.OpNotEquals, original.ID, dup.Get("id").Int())
	c.Check("duplicate elements", assertions.OpLength, len(original.Formation.Elements), dup.Get("formation.elements"))

	for i, el := range original.Formation.Elements {
		c.Check(elementSubject(i, "callsign"), assertions.OpEquals, el.Callsign, elementField(dup, i, "callsign").String())
		c.Check(elementSubject(i, "reg"), assertions.OpEquals, el.Reg, elementField(dup, i, "reg").String())
		c.Check(elementSubject(i, "type"), assertions.OpEquals, el.Type, elementField(dup, i, "type").String())
		c.Check(elementSubject(i, "wtc"), assertions.OpEquals, el.WTC, elementField(dup, i, "wtc").String())
		c.Check(elementSubject(i, "status"), assertions.OpEquals, movement.StatusPlanned, elementField(dup, i, "status").String())
		c.Check(elementSubject(i, "depActual"), assertions.OpEmpty, nil, elementField(dup, i, "depActual").String())
		c.Check(elementSubject(i, "arrActual"), assertions.OpEmpty, nil, elementField(dup, i, "arrActual").String())
	}
	return nil
}

// duplicateOf finds a movement other than original carrying the same callsign
func duplicateOf(movements gjson.Result, original *movement.Movement) gjson.Result {
	for _, m := range movements.Array() {
		if m.Get("id").Int() != int64(original.ID) && m.Get("callsignCode").String() == original.CallsignCode {
			return m
		}
	}
	return gjson.Result{}
}

func hasFormation(m gjson.Result) bool {
	f := m.Get("formation")
	return f.Exists() && f.Type != gjson.Null
}

func elementSubject(i int, field string) string {
	return fmt.Sprintf("element[%d].%s", i, field)
}
