package movement

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed envelope.schema.json
var envelopeSchema string

var schemaLoader = gojsonschema.NewStringLoader(envelopeSchema)

// ValidationError lists every schema violation found in a document
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("envelope does not match schema: %s", strings.Join(e.Problems, "; "))
}

// ValidateJSON checks a raw envelope against the storage schema.
// It returns a *ValidationError when the document parses but does not conform.
func ValidateJSON(document string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Problems: problems}
}

// Validate encodes the envelope and checks it against the storage schema
func (e *Envelope) Validate() error {
	doc, err := e.Marshal()
	if err != nil {
		return err
	}
	return ValidateJSON(doc)
}
