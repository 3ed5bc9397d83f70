package generations

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/form.schema.json
var formSchemaJSON []byte

var (
	formSchemaOnce sync.Once
	formSchema     *gojsonschema.Schema
	formSchemaErr  error
)

// ValidateFormJSON checks a request body against the form schema.
func ValidateFormJSON(body []byte) error {
	formSchemaOnce.Do(func() {
		formSchema, formSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(formSchemaJSON))
	})
	if formSchemaErr != nil {
		return fmt.Errorf("load form schema: %w", formSchemaErr)
	}
	res, err := formSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
