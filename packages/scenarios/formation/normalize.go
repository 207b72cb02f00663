package formation

import (
	"context"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/abdul-hamid-achik/stripcheck/packages/storage"
	"github.com/tidwall/gjson"
)

// F10 seeds a formation with a null label and no elements key. Page errors
// raised while the board loads it fail the scenario through the runner.
func (s *Suite) malformedNormalized(ctx context.Context, c *runner.Case) error {
	raw, err := movement.MalformedEnvelope(malformedID, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if err := s.store.SeedRaw(ctx, raw); err != nil {
		return err
	}
	if err := s.reload(ctx); err != nil {
		return err
	}

	if _, _, err := s.store.WaitFor(ctx, func(ms gjson.Result) bool {
		f := storage.ByID(ms, malformedID).Get("formation")
		return f.Get("label").Type == gjson.String && f.Get("elements").IsArray()
	}); err != nil {
		return err
	}
	if err := c.Screenshot(ctx, ""); err != nil {
		return err
	}

	m, err := s.store.Movement(ctx, malformedID)
	if err != nil {
		return err
	}
	f := m.Get("formation")
	c.Check("formation.label type", assertions.OpType, "string", f.Get("label"))
	c.Check("formation.label", assertions.OpNotEmpty, nil, f.Get("label"))
	c.Check("formation.elements type", assertions.OpType, "array", f.Get("elements"))
	c.Check("formation.elements", assertions.OpLength, 0, f.Get("elements"))
	return nil
}
