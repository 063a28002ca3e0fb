package api

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var specYAML []byte

var (
	loadOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// GetSwagger parses and validates the embedded OpenAPI document once.
func GetSwagger() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()

		doc, err := loader.LoadFromData(specYAML)
		if err != nil {
			specErr = fmt.Errorf("error loading openapi document: %w", err)
			return
		}

		err = doc.Validate(context.Background())
		if err != nil {
			specErr = fmt.Errorf("invalid openapi document: %w", err)
			return
		}

		spec = doc
	})

	return spec, specErr
}
