package movement

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnvelopeVersion is the storage schema version the fixtures are written for
const EnvelopeVersion = 3

// Movement statuses and formation element statuses share one vocabulary
const (
	StatusPlanned   = "PLANNED"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Wake turbulence categories, lightest first
const (
	WTCLight  = "L"
	WTCSmall  = "S"
	WTCMedium = "M"
	WTCHeavy  = "H"
	WTCSuper  = "J"
)

// MaxElements is the largest formation the board accepts
const MaxElements = 12

// Envelope is the versioned wrapper stored under the movements key
type Envelope struct {
	Version   int         `json:"version"`
	Timestamp string      `json:"timestamp"`
	Movements []*Movement `json:"movements"`
}

// Movement is one strip on the board
type Movement struct {
	ID            int        `json:"id"`
	Status        string     `json:"status"`
	CallsignCode  string     `json:"callsignCode"`
	CallsignLabel string     `json:"callsignLabel"`
	CallsignVoice string     `json:"callsignVoice"`
	Registration  string     `json:"registration"`
	Type          string     `json:"type"`
	WTC           string     `json:"wtc"`
	DepAd         string     `json:"depAd"`
	DepName       string     `json:"depName"`
	ArrAd         string     `json:"arrAd"`
	ArrName       string     `json:"arrName"`
	DepPlanned    string     `json:"depPlanned"`
	DepActual     string     `json:"depActual"`
	ArrPlanned    string     `json:"arrPlanned"`
	ArrActual     string     `json:"arrActual"`
	DOF           string     `json:"dof"`
	Rules         string     `json:"rules"`
	FlightType    string     `json:"flightType"`
	IsLocal       bool       `json:"isLocal"`
	TngCount      int        `json:"tngCount"`
	OsCount       int        `json:"osCount"`
	FisCount      int        `json:"fisCount"`
	EgowCode      string     `json:"egowCode"`
	EgowDesc      string     `json:"egowDesc"`
	UnitCode      string     `json:"unitCode"`
	UnitDesc      string     `json:"unitDesc"`
	Captain       string     `json:"captain"`
	POB           int        `json:"pob"`
	Remarks       string     `json:"remarks"`
	Formation     *Formation `json:"formation"`
}

// Formation groups several aircraft under one strip
type Formation struct {
	Label      string     `json:"label"`
	WTCCurrent string     `json:"wtcCurrent"`
	WTCMax     string     `json:"wtcMax"`
	Elements   []*Element `json:"elements"`
}

// Element is one aircraft within a formation
type Element struct {
	Callsign  string `json:"callsign"`
	Reg       string `json:"reg"`
	Type      string `json:"type"`
	WTC       string `json:"wtc"`
	Status    string `json:"status"`
	DepActual string `json:"depActual"`
	ArrActual string `json:"arrActual"`
}

// NewEnvelope wraps movements with the current schema version and timestamp
func NewEnvelope(at time.Time, movements ...*Movement) *Envelope {
	if movements == nil {
		movements = []*Movement{}
	}
	return &Envelope{
		Version:   EnvelopeVersion,
		Timestamp: at.UTC().Format(time.RFC3339),
		Movements: movements,
	}
}

// Marshal encodes the envelope the way the strip board stores it
func (e *Envelope) Marshal() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	return string(data), nil
}

// Find returns the movement with the given id
func (e *Envelope) Find(id int) (*Movement, bool) {
	for _, m := range e.Movements {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// IsTerminal reports whether an element status ends the element's participation
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// ValidWTC reports whether c is a known wake turbulence category
func ValidWTC(c string) bool {
	switch c {
	case WTCLight, WTCSmall, WTCMedium, WTCHeavy, WTCSuper:
		return true
	}
	return false
}
