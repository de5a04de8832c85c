package models

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// DefinitionSchema is the JSON Schema a workflow definition document must
// satisfy before the engine will load it.
const DefinitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "trigger_type"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 3},
    "active": {"type": "boolean"},
    "trigger_type": {
      "type": "string",
      "enum": [
        "manual", "chat_message", "integration_change", "time_based",
        "webhook", "sentiment_analysis", "keyword_detection", "customer_action"
      ]
    },
    "trigger_conditions": {"type": "array", "items": {"$ref": "#/definitions/condition"}},
    "trigger_settings": {"type": "object"},
    "schedule": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"type": "string", "enum": ["interval", "daily", "weekly", "cron"]},
        "interval_minutes": {"type": "integer", "minimum": 1},
        "at": {"type": "string", "pattern": "^[0-9]{1,2}:[0-9]{2}$"},
        "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
        "cron_expression": {"type": "string"}
      }
    },
    "steps": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "action_type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "action_type": {
            "type": "string",
            "enum": [
              "send_notification", "create_record", "update_record",
              "update_order", "escalate_to_human", "delay", "webhook",
              "custom_script"
            ]
          },
          "config": {"type": "object"},
          "conditions": {"type": "array", "items": {"$ref": "#/definitions/condition"}},
          "required": {"type": "boolean"}
        }
      }
    },
    "owner": {"type": "string"}
  },
  "definitions": {
    "condition": {
      "type": "object",
      "required": ["field", "operator"],
      "properties": {
        "field": {"type": "string", "minLength": 1},
        "operator": {
          "type": "string",
          "enum": [
            "equals", "not_equals", "contains", "not_contains",
            "greater_than", "less_than", "greater_equal", "less_equal",
            "regex", "in", "not_in"
          ]
        },
        "value": {},
        "value_type": {"type": "string", "enum": ["string", "number", "boolean", "date", "array"]},
        "combinator": {"type": "string", "enum": ["and", "or"]}
      }
    }
  }
}`

// ValidateDefinitionDocument checks a raw definition document against the
// schema and returns every violation found.
func ValidateDefinitionDocument(document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(DefinitionSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate definition document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	var errs error
	for _, desc := range result.Errors() {
		errs = errors.Join(errs, errors.New(desc.String()))
	}

	return errs
}
