package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed import.schema.json
var importSchemaJSON []byte

const importSchemaURL = "https://schemas.posadzki.local/catalog-import.json"

var (
	importSchemaOnce sync.Once
	importSchema     *jsonschema.Schema
	importSchemaErr  error
)

func compileImportSchema() (*jsonschema.Schema, error) {
	importSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(importSchemaURL, bytes.NewReader(importSchemaJSON)); err != nil {
			importSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		importSchema, importSchemaErr = compiler.Compile(importSchemaURL)
		if importSchemaErr != nil {
			importSchemaErr = fmt.Errorf("compile schema: %w", importSchemaErr)
		}
	})
	return importSchema, importSchemaErr
}

// ParseImport validates an import file against the embedded schema and decodes
// it into raw records. Validation is looser than normalization: numbers may be
// strings and sub-lists may be JSON encoded.
func ParseImport(data []byte) (Raw, error) {
	schema, err := compileImportSchema()
	if err != nil {
		return Raw{}, err
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Raw{}, fmt.Errorf("decode import file: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return Raw{}, fmt.Errorf("validate import file: %w", err)
	}

	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, fmt.Errorf("decode import records: %w", err)
	}
	return raw, nil
}
