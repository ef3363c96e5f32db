package protocol

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateRequest checks the envelope-level invariants before dispatch.
// A wrong version tag is an invalid request; the method layer is never
// reached for such envelopes.
func ValidateRequest(req *Request) error {
	if req.JSONRPC != Version {
		return fmt.Errorf("invalid jsonrpc version: %q (must be %q)", req.JSONRPC, Version)
	}
	if req.Method == "" {
		return fmt.Errorf("missing method")
	}
	return nil
}

// ValidateToolArguments validates tool arguments against the tool's
// declared input schema.
func ValidateToolArguments(schema map[string]interface{}, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		for _, desc := range result.Errors() {
			return fmt.Errorf("invalid arguments: %s", desc)
		}
	}

	return nil
}
