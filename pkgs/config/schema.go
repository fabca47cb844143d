package config

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/shellpure/shellpure/pkgs/errors"
)

// schemaJSON constrains option types; key validity is handled
// separately so unknown keys can get suggestions.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "strict_idempotency": {"type": "boolean"},
    "remove_non_deterministic": {"type": "boolean"},
    "track_side_effects": {"type": "boolean"},
    "type_check": {"type": "boolean"},
    "emit_guards": {"type": "boolean"},
    "preserve_formatting": {"type": "boolean"},
    "max_line_length": {"type": "integer", "minimum": 0},
    "skip_blank_line_removal": {"type": "boolean"},
    "skip_consolidation": {"type": "boolean"},
    "categories": {
      "type": "object",
      "additionalProperties": {"type": "boolean"}
    }
  }
}`

var schema = jsonschema.MustCompileString("shellpure-config.schema.json", schemaJSON)

// validateSchema checks option types. The YAML value is round-tripped
// through JSON first, since the validator expects encoding/json types.
func validateSchema(raw map[string]interface{}) error {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(errors.ErrConfigValidation, "normalizing config for validation", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, "normalizing config for validation", err)
	}
	if err := schema.Validate(doc); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, "config does not match schema", err)
	}
	return nil
}
