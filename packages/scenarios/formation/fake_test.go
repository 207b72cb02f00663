package formation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/abdul-hamid-achik/stripcheck/packages/storage"
	"github.com/tidwall/gjson"
)

var (
	stripIDPattern = regexp.MustCompile(`data-id="(\d+)"`)
	nthPattern     = regexp.MustCompile(`nth=(\d+)`)
	testNow        = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
)

// fakeBoard is an in-memory strip board implementing both UI and Store.
// Flags switch on specific misbehaviours so scenarios can be seen failing.
type fakeBoard struct {
	sel config.Selectors
	raw string

	fields     map[string]string
	modalOpen  bool
	editOpen   bool
	editID     int
	expandedID int
	pendingDup int

	badgeOffByOne    bool
	noEditDialog     bool
	noNormalize      bool
	dupKeepsState    bool
	dupViaDialog     bool
	inlineEditAll    bool
	wtcNotRecomputed bool

	clicks []string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{sel: config.DefaultSelectors(), fields: map[string]string{}}
}

func notReached(selector string) error {
	return fmt.Errorf("%w: %s", runner.ErrNotReached, selector)
}

func (b *fakeBoard) load() *movement.Envelope {
	env := movement.NewEnvelope(testNow)
	if b.raw != "" {
		if err := json.Unmarshal([]byte(b.raw), env); err != nil {
			panic(err)
		}
	}
	return env
}

func (b *fakeBoard) save(env *movement.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	b.raw = string(data)
}

func (b *fakeBoard) find(id int) *movement.Movement {
	m, _ := b.load().Find(id)
	return m
}

func (b *fakeBoard) nextID(env *movement.Envelope) int {
	next := 1
	for _, m := range env.Movements {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

func stripID(selector string) int {
	match := stripIDPattern.FindStringSubmatch(selector)
	if match == nil {
		return 0
	}
	id, _ := strconv.Atoi(match[1])
	return id
}

func rowIndex(selector string) int {
	match := nthPattern.FindStringSubmatch(selector)
	if match == nil {
		return -1
	}
	i, _ := strconv.Atoi(match[1])
	return i
}

func (b *fakeBoard) scoped(selector, child string) bool {
	return strings.HasSuffix(selector, " >> "+child)
}

// Store

func (b *fakeBoard) Clear(ctx context.Context) error {
	b.raw = ""
	return nil
}

func (b *fakeBoard) Seed(ctx context.Context, env *movement.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	raw, err := env.Marshal()
	if err != nil {
		return err
	}
	b.raw = raw
	return nil
}

func (b *fakeBoard) SeedRaw(ctx context.Context, raw string) error {
	b.raw = raw
	return nil
}

func (b *fakeBoard) Movements(ctx context.Context) (gjson.Result, error) {
	return gjson.Get(b.raw, "movements"), nil
}

func (b *fakeBoard) Movement(ctx context.Context, id int) (gjson.Result, error) {
	movements, _ := b.Movements(ctx)
	return storage.ByID(movements, id), nil
}

func (b *fakeBoard) WaitFor(ctx context.Context, cond func(gjson.Result) bool) (gjson.Result, bool, error) {
	movements, _ := b.Movements(ctx)
	return movements, cond(movements), nil
}

// UI

func (b *fakeBoard) Reload(ctx context.Context) error {
	b.modalOpen, b.editOpen = false, false
	b.expandedID = 0
	if b.noNormalize || b.raw == "" {
		return nil
	}
	env := b.load()
	for _, m := range env.Movements {
		if m.Formation == nil {
			continue
		}
		if m.Formation.Elements == nil {
			m.Formation.Elements = []*movement.Element{}
		}
		if m.Formation.Label == "" {
			m.Formation.Label = m.CallsignCode
		}
	}
	b.save(env)
	return nil
}

func (b *fakeBoard) Click(ctx context.Context, selector string) error {
	b.clicks = append(b.clicks, selector)

	switch {
	case selector == b.sel.NewMovement:
		b.fields = map[string]string{}
		b.modalOpen = true
	case selector == b.sel.FormSave:
		if !b.modalOpen {
			return notReached(selector)
		}
		b.saveForm()
		b.modalOpen = false
	case selector == b.sel.EditSave:
		if !b.editOpen {
			return notReached(selector)
		}
		b.saveEdit()
		b.editOpen = false
	case b.scoped(selector, b.sel.ExpandToggle):
		if b.find(stripID(selector)) == nil {
			return notReached(selector)
		}
		b.expandedID = stripID(selector)
	case b.scoped(selector, b.sel.ElementSave):
		b.saveElementRow(rowIndex(selector))
	case b.scoped(selector, b.sel.EditButton):
		m := b.find(stripID(selector))
		if m == nil {
			return notReached(selector)
		}
		if b.noEditDialog {
			return nil
		}
		b.editOpen = true
		b.editID = m.ID
		if m.Formation != nil {
			b.fields[b.sel.EditFormationCount] = strconv.Itoa(len(m.Formation.Elements))
		}
	case b.scoped(selector, b.sel.DuplicateButton):
		id := stripID(selector)
		if b.find(id) == nil {
			return notReached(selector)
		}
		if b.dupViaDialog {
			b.pendingDup = id
			b.modalOpen = true
			return nil
		}
		b.duplicate(id)
	default:
		return fmt.Errorf("unexpected click %s", selector)
	}
	return nil
}

func (b *fakeBoard) saveForm() {
	if b.pendingDup != 0 {
		b.duplicate(b.pendingDup)
		b.pendingDup = 0
		return
	}

	env := b.load()
	callsign := b.fields[b.sel.FormCallsign]
	m := movement.Base(b.nextID(env), callsign, testNow)
	m.Registration = b.fields[b.sel.FormRegistration]
	m.Type = b.fields[b.sel.FormType]
	m.WTC = b.fields[b.sel.FormWTC]

	if n, _ := strconv.Atoi(b.fields[b.sel.FormFormationCount]); n >= 2 {
		elements := make([]*movement.Element, n)
		for i := range elements {
			elements[i] = movement.NewElement(fmt.Sprintf("%s%d", callsign, i+1), "", m.Type, m.WTC)
		}
		movement.WithFormation(m, callsign, m.WTC, m.WTC, elements...)
	}

	env.Movements = append(env.Movements, m)
	b.save(env)
}

func (b *fakeBoard) saveEdit() {
	env := b.load()
	m, ok := env.Find(b.editID)
	if !ok {
		return
	}
	if n, _ := strconv.Atoi(b.fields[b.sel.EditFormationCount]); n < 2 {
		m.Formation = nil
	}
	b.save(env)
}

func (b *fakeBoard) saveElementRow(i int) {
	env := b.load()
	m, ok := env.Find(b.expandedID)
	if !ok || m.Formation == nil || i < 0 || i >= len(m.Formation.Elements) {
		return
	}
	row := nth(b.sel.ElementRow, i)

	targets := []*movement.Element{m.Formation.Elements[i]}
	if b.inlineEditAll {
		targets = m.Formation.Elements
	}
	for _, el := range targets {
		el.Status = b.fields[within(row, b.sel.ElementStatus)]
		el.DepActual = b.fields[within(row, b.sel.ElementDepActual)]
		el.ArrActual = b.fields[within(row, b.sel.ElementArrActual)]
	}

	if !b.wtcNotRecomputed {
		m.Formation.WTCCurrent = heaviestActive(m.Formation)
	}
	b.save(env)
}

// heaviestActive stands in for the board's rollup so F6 has something to observe
func heaviestActive(f *movement.Formation) string {
	order := "LSMHJ"
	best := -1
	for _, el := range f.Elements {
		if movement.IsTerminal(el.Status) {
			continue
		}
		if i := strings.Index(order, el.WTC); i > best {
			best = i
		}
	}
	if best < 0 {
		return f.WTCCurrent
	}
	return string(order[best])
}

func (b *fakeBoard) duplicate(id int) {
	env := b.load()
	orig, _ := env.Find(id)
	dup := *orig
	dup.ID = b.nextID(env)
	if orig.Formation != nil {
		f := *orig.Formation
		f.Elements = make([]*movement.Element, len(orig.Formation.Elements))
		for i, el := range orig.Formation.Elements {
			copied := *el
			if !b.dupKeepsState {
				copied.Status = movement.StatusPlanned
				copied.DepActual = ""
				copied.ArrActual = ""
			}
			f.Elements[i] = &copied
		}
		dup.Formation = &f
	}
	env.Movements = append(env.Movements, &dup)
	b.save(env)
}

func (b *fakeBoard) Fill(ctx context.Context, selector, value string) error {
	b.fields[selector] = value
	return nil
}

func (b *fakeBoard) Select(ctx context.Context, selector, value string) error {
	b.fields[selector] = value
	return nil
}

func (b *fakeBoard) elementCount(id int) int {
	m := b.find(id)
	if m == nil || m.Formation == nil {
		return 0
	}
	return len(m.Formation.Elements)
}

func (b *fakeBoard) Count(ctx context.Context, selector string) (int, error) {
	switch {
	case selector == b.sel.ElementRow, selector == within(b.sel.ElementRow, b.sel.ElementSave):
		return b.elementCount(b.expandedID), nil
	case b.scoped(selector, b.sel.Badge):
		if b.elementCount(stripID(selector)) > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count %s", selector)
}

func (b *fakeBoard) Text(ctx context.Context, selector string) (string, error) {
	if !b.scoped(selector, b.sel.Badge) {
		return "", fmt.Errorf("unexpected text %s", selector)
	}
	n := b.elementCount(stripID(selector))
	if b.badgeOffByOne {
		n--
	}
	return fmt.Sprintf("FMN %d", n), nil
}

func (b *fakeBoard) Value(ctx context.Context, selector string) (string, error) {
	return b.fields[selector], nil
}

func (b *fakeBoard) Visible(ctx context.Context, selector string) (bool, error) {
	switch selector {
	case b.sel.MovementModal:
		return b.modalOpen, nil
	case b.sel.EditModal:
		return b.editOpen, nil
	}
	return false, nil
}

func (b *fakeBoard) WaitVisible(ctx context.Context, selector string) error {
	var visible bool
	switch {
	case selector == b.sel.Ready:
		visible = true
	case selector == b.sel.MovementModal:
		visible = b.modalOpen
	case selector == b.sel.EditModal:
		visible = b.editOpen
	case selector == b.sel.FormationTable:
		visible = b.elementCount(b.expandedID) > 0
	case b.scoped(selector, b.sel.Badge):
		visible = b.elementCount(stripID(selector)) > 0
	}
	if !visible {
		return notReached(selector)
	}
	return nil
}

func (b *fakeBoard) WaitHidden(ctx context.Context, selector string) error {
	if visible, _ := b.Visible(ctx, selector); visible {
		return notReached(selector)
	}
	return nil
}

// fakeDriver records screenshot names instead of writing files
type fakeDriver struct {
	shots []string
	errs  []string
}

func (d *fakeDriver) ResetErrors() {
	d.errs = nil
}

func (d *fakeDriver) PageErrors() []string {
	return d.errs
}

func (d *fakeDriver) Screenshot(ctx context.Context, name string) (string, error) {
	ref := name + ".png"
	d.shots = append(d.shots, ref)
	return ref, nil
}
