package config

import (
	"reflect"
	"strconv"
	"strings"
)

// Selectors holds the DOM selectors of the strip board under test.
//
// Strip is a template: "{id}" is replaced with the movement id. Selectors
// scoped to a strip or element row are chained onto their parent with
// Playwright's ">>" syntax, so they must not depend on document position.
type Selectors struct {
	Ready              string `json:"ready,omitempty" yaml:"ready,omitempty"`
	NewMovement        string `json:"newMovement,omitempty" yaml:"new_movement,omitempty"`
	MovementModal      string `json:"movementModal,omitempty" yaml:"movement_modal,omitempty"`
	FormCallsign       string `json:"formCallsign,omitempty" yaml:"form_callsign,omitempty"`
	FormRegistration   string `json:"formRegistration,omitempty" yaml:"form_registration,omitempty"`
	FormType           string `json:"formType,omitempty" yaml:"form_type,omitempty"`
	FormWTC            string `json:"formWtc,omitempty" yaml:"form_wtc,omitempty"`
	FormFormationCount string `json:"formFormationCount,omitempty" yaml:"form_formation_count,omitempty"`
	FormSave           string `json:"formSave,omitempty" yaml:"form_save,omitempty"`
	Strip              string `json:"strip,omitempty" yaml:"strip,omitempty"`
	Badge              string `json:"badge,omitempty" yaml:"badge,omitempty"`
	ExpandToggle       string `json:"expandToggle,omitempty" yaml:"expand_toggle,omitempty"`
	FormationTable     string `json:"formationTable,omitempty" yaml:"formation_table,omitempty"`
	ElementRow         string `json:"elementRow,omitempty" yaml:"element_row,omitempty"`
	ElementStatus      string `json:"elementStatus,omitempty" yaml:"element_status,omitempty"`
	ElementDepActual   string `json:"elementDepActual,omitempty" yaml:"element_dep_actual,omitempty"`
	ElementArrActual   string `json:"elementArrActual,omitempty" yaml:"element_arr_actual,omitempty"`
	ElementSave        string `json:"elementSave,omitempty" yaml:"element_save,omitempty"`
	EditButton         string `json:"editButton,omitempty" yaml:"edit_button,omitempty"`
	EditModal          string `json:"editModal,omitempty" yaml:"edit_modal,omitempty"`
	EditFormationCount string `json:"editFormationCount,omitempty" yaml:"edit_formation_count,omitempty"`
	EditSave           string `json:"editSave,omitempty" yaml:"edit_save,omitempty"`
	DuplicateButton    string `json:"duplicateButton,omitempty" yaml:"duplicate_button,omitempty"`
}

// StripFor returns the strip selector for one movement
func (s Selectors) StripFor(id int) string {
	return strings.ReplaceAll(s.Strip, "{id}", strconv.Itoa(id))
}

// Merge returns s with every non-empty selector of other applied over it
func (s Selectors) Merge(other Selectors) Selectors {
	result := s
	dst := reflect.ValueOf(&result).Elem()
	src := reflect.ValueOf(other)
	for i := 0; i < src.NumField(); i++ {
		if v := src.Field(i).String(); v != "" {
			dst.Field(i).SetString(v)
		}
	}
	return result
}

// Missing returns the yaml names of empty selectors
func (s Selectors) Missing() []string {
	var missing []string
	v := reflect.ValueOf(s)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).String() == "" {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			missing = append(missing, name)
		}
	}
	return missing
}
