package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/schema"
)

// The schema declaration never changes at runtime, so it is compiled once.
var recordSchema = sync.OnceValues(compileRecordSchema)

// ValidateRecord checks one canonical record against the shared schema
// declaration before it is allowed near either store. The round-trip through
// JSON keeps the check honest: the persisted shape is what gets validated.
func ValidateRecord(rec entity.Record) error {
	compiled, err := recordSchema()
	if err != nil {
		return err
	}

	// The id is assigned at persistence time and is not part of the
	// canonical shape.
	rec.ID = ""
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

func compileRecordSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema.RecordJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}
