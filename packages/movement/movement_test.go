package movement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var fixedDay = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(fixedDay)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Equal(t, "2026-10-16T09:00:00Z", env.Timestamp)
	assert.NotNil(t, env.Movements)

	doc, err := env.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3,"timestamp":"2026-10-16T09:00:00Z","movements":[]}`, doc)
}

func TestConnectFixture(t *testing.T) {
	m := Connect(1001, fixedDay)
	require.NotNil(t, m.Formation)
	assert.Equal(t, CallsignConnect, m.CallsignCode)
	assert.Len(t, m.Formation.Elements, 3)
	for _, el := range m.Formation.Elements {
		assert.Equal(t, StatusPlanned, el.Status)
		assert.Empty(t, el.DepActual)
		assert.Empty(t, el.ArrActual)
	}

	doc, err := NewEnvelope(fixedDay, m).Marshal()
	require.NoError(t, err)
	assert.Equal(t, "CNNCT", gjson.Get(doc, "movements.0.callsignCode").String())
	assert.Equal(t, int64(3), gjson.Get(doc, "movements.0.formation.elements.#").Int())
	assert.Equal(t, "2026-10-16", gjson.Get(doc, "movements.0.dof").String())
}

func TestBaseHasNullFormation(t *testing.T) {
	doc, err := NewEnvelope(fixedDay, Base(1, CallsignSolo, fixedDay)).Marshal()
	require.NoError(t, err)

	formation := gjson.Get(doc, "movements.0.formation")
	assert.True(t, formation.Exists())
	assert.Equal(t, gjson.Null, formation.Type)
}

func TestMixedFixture(t *testing.T) {
	m := Mixed(2001, fixedDay)
	assert.Equal(t, WTCMedium, m.Formation.WTCCurrent)
	assert.Equal(t, WTCMedium, m.Formation.WTCMax)
	assert.Equal(t, WTCMedium, m.Formation.Elements[0].WTC)
	assert.Equal(t, WTCLight, m.Formation.Elements[1].WTC)
}

func TestInProgressFixture(t *testing.T) {
	m := InProgress(3001, fixedDay)
	statuses := []string{}
	for _, el := range m.Formation.Elements {
		statuses = append(statuses, el.Status)
	}
	assert.Equal(t, []string{StatusActive, StatusCompleted, StatusPlanned}, statuses)
	assert.Equal(t, "10:41", m.Formation.Elements[1].ArrActual)
}

func TestValidate(t *testing.T) {
	t.Run("fixtures conform", func(t *testing.T) {
		env := NewEnvelope(fixedDay,
			Base(1, CallsignSolo, fixedDay),
			Connect(2, fixedDay),
			Mixed(3, fixedDay),
			InProgress(4, fixedDay),
		)
		assert.NoError(t, env.Validate())
	})

	t.Run("malformed formation is rejected", func(t *testing.T) {
		doc, err := MalformedEnvelope(5, fixedDay)
		require.NoError(t, err)

		assert.False(t, gjson.Get(doc, "movements.0.formation.elements").Exists())
		assert.Equal(t, gjson.Null, gjson.Get(doc, "movements.0.formation.label").Type)

		err = ValidateJSON(doc)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.NotEmpty(t, verr.Problems)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		m := Connect(6, fixedDay)
		m.Formation.Elements[0].Status = "AIRBORNE"
		assert.Error(t, NewEnvelope(fixedDay, m).Validate())
	})

	t.Run("oversized formation is rejected", func(t *testing.T) {
		m := Base(7, "BIGGY", fixedDay)
		var elements []*Element
		for i := 0; i <= MaxElements; i++ {
			elements = append(elements, NewElement("BIGGY", "ZZ999", "HAWK", WTCLight))
		}
		WithFormation(m, "too many", WTCLight, WTCLight, elements...)
		assert.Error(t, NewEnvelope(fixedDay, m).Validate())
	})

	t.Run("not json", func(t *testing.T) {
		err := ValidateJSON("{not json")
		require.Error(t, err)
		var verr *ValidationError
		assert.False(t, errors.As(err, &verr))
	})
}

func TestFind(t *testing.T) {
	env := NewEnvelope(fixedDay, Base(1, CallsignSolo, fixedDay), Connect(2, fixedDay))
	m, ok := env.Find(2)
	require.True(t, ok)
	assert.Equal(t, CallsignConnect, m.CallsignCode)

	_, ok = env.Find(99)
	assert.False(t, ok)
}

func TestStatusAndWTCHelpers(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusActive))
	assert.False(t, IsTerminal(StatusPlanned))

	assert.True(t, ValidWTC("M"))
	assert.False(t, ValidWTC("X"))
}
