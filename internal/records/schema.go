package records

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const datasetSchema = `{
	"type": "object",
	"required": ["context", "prompt", "answer"],
	"properties": {
		"context": {"type": "string"},
		"prompt": {"type": "string"},
		"answer": {"type": "string"}
	}
}`

const generatedSchema = `{
	"type": "object",
	"required": ["prompt", "generated_output"],
	"properties": {
		"prompt": {"type": "string"},
		"generated_output": {"type": "string"}
	}
}`

const evaluationSchema = `{
	"type": "object",
	"required": ["prompt", "evaluation"],
	"properties": {
		"prompt": {"type": "string"},
		"evaluation": {
			"type": "object",
			"required": ["is_correct", "punctuation"],
			"properties": {
				"is_correct": {"enum": ["Yes", "No"]},
				"punctuation": {"type": "integer"},
				"note": {"type": "string"}
			}
		}
	}
}`

var (
	datasetValidator    = mustCompile("dataset.json", datasetSchema)
	generatedValidator  = mustCompile("generated.json", generatedSchema)
	evaluationValidator = mustCompile("evaluation.json", evaluationSchema)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(schema), &doc); err != nil {
		panic(fmt.Sprintf("records: parse schema %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("records: add schema %s: %v", name, err))
	}
	s, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("records: compile schema %s: %v", name, err))
	}
	return s
}

// decode validates one JSONL line against schema before unmarshalling it into v.
func decode(line []byte, schema *jsonschema.Schema, v any) error {
	var doc any
	if err := json.Unmarshal(line, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(line, v)
}
