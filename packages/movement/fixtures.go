package movement

import (
	"encoding/json"
	"fmt"
	"time"
)

// Fixture callsigns, one per seeded scenario
const (
	CallsignSolo       = "SOLO1"
	CallsignPair       = "MEMBR"
	CallsignConnect    = "CNNCT"
	CallsignMixed      = "MIXED"
	CallsignInProgress = "DUPLX"
	CallsignMalformed  = "BROKN"
)

// Base returns a fully populated local movement without a formation
func Base(id int, callsign string, dof time.Time) *Movement {
	return &Movement{
		ID:            id,
		Status:        StatusPlanned,
		CallsignCode:  callsign,
		CallsignLabel: callsign,
		CallsignVoice: callsign,
		Registration:  "ZZ100",
		Type:          "HAWK",
		WTC:           WTCLight,
		DepAd:         "EGOV",
		DepName:       "Valley",
		ArrAd:         "EGOV",
		ArrName:       "Valley",
		DepPlanned:    "10:00",
		ArrPlanned:    "11:00",
		DOF:           dof.Format("2006-01-02"),
		Rules:         "VFR",
		FlightType:    "M",
		IsLocal:       true,
		EgowCode:      "BM",
		EgowDesc:      "Based military",
		UnitCode:      "4FTS",
		UnitDesc:      "No. 4 Flying Training School",
		Captain:       "Test Pilot",
		POB:           2,
	}
}

// NewElement returns a planned element with no actual times
func NewElement(callsign, reg, typ, wtc string) *Element {
	return &Element{
		Callsign: callsign,
		Reg:      reg,
		Type:     typ,
		WTC:      wtc,
		Status:   StatusPlanned,
	}
}

// WithFormation attaches a formation built from elements to m.
// wtcCurrent and wtcMax are literals, not computed.
func WithFormation(m *Movement, label, wtcCurrent, wtcMax string, elements ...*Element) *Movement {
	if elements == nil {
		elements = []*Element{}
	}
	m.Formation = &Formation{
		Label:      label,
		WTCCurrent: wtcCurrent,
		WTCMax:     wtcMax,
		Elements:   elements,
	}
	return m
}

// Connect is the CNNCT movement: three Hawks flying as one strip
func Connect(id int, dof time.Time) *Movement {
	return WithFormation(Base(id, CallsignConnect, dof), "CNNCT flight", WTCLight, WTCLight,
		NewElement("CNNCT1", "ZZ101", "HAWK", WTCLight),
		NewElement("CNNCT2", "ZZ102", "HAWK", WTCLight),
		NewElement("CNNCT3", "ZZ103", "HAWK", WTCLight),
	)
}

// Mixed is a two-element formation whose lead is medium and whose wingman is light
func Mixed(id int, dof time.Time) *Movement {
	m := Base(id, CallsignMixed, dof)
	m.Type = "A400"
	m.WTC = WTCMedium
	m.Registration = "ZM400"
	return WithFormation(m, "MIXED pair", WTCMedium, WTCMedium,
		NewElement("MIXED1", "ZM400", "A400", WTCMedium),
		NewElement("MIXED2", "ZZ104", "HAWK", WTCLight),
	)
}

// InProgress is a formation part-way through its sortie: one element
// airborne, one landed, one still planned
func InProgress(id int, dof time.Time) *Movement {
	m := WithFormation(Base(id, CallsignInProgress, dof), "DUPLX flight", WTCLight, WTCLight,
		NewElement("DUPLX1", "ZZ111", "HAWK", WTCLight),
		NewElement("DUPLX2", "ZZ112", "HAWK", WTCLight),
		NewElement("DUPLX3", "ZZ113", "HAWK", WTCLight),
	)
	m.Status = StatusActive
	m.DepActual = "10:04"
	m.Formation.Elements[0].Status = StatusActive
	m.Formation.Elements[0].DepActual = "10:04"
	m.Formation.Elements[1].Status = StatusCompleted
	m.Formation.Elements[1].DepActual = "10:05"
	m.Formation.Elements[1].ArrActual = "10:41"
	return m
}

// MalformedEnvelope returns a raw envelope whose single movement carries a
// formation with a null label and no elements list. It is built as a map
// because the typed model cannot express the missing key.
func MalformedEnvelope(id int, at time.Time) (string, error) {
	m := Base(id, CallsignMalformed, at)
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding movement: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("decoding movement: %w", err)
	}
	raw["formation"] = map[string]any{
		"label":      nil,
		"wtcCurrent": WTCLight,
	}

	env := map[string]any{
		"version":   EnvelopeVersion,
		"timestamp": at.UTC().Format(time.RFC3339),
		"movements": []any{raw},
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	return string(out), nil
}
