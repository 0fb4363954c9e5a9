package generation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// QuestionSchema describes one generated question.
const QuestionSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"question": {"type": "string", "minLength": 1},
		"options": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 4, "maxItems": 4, "uniqueItems": true},
		"correctAnswer": {"type": "string", "minLength": 1},
		"explanation": {"type": "string"}
	},
	"required": ["id", "question", "options", "correctAnswer", "explanation"]
}`

var quizSchema = gojsonschema.NewStringLoader(fmt.Sprintf(`{
	"type": "object",
	"properties": {
		"questions": {"type": "array", "items": %s, "minItems": 1}
	},
	"required": ["questions"]
}`, QuestionSchema))

// ValidateSchema validates a JSON document against a schema loader.
func ValidateSchema(schema gojsonschema.JSONLoader, doc []byte) error {
	return validateSchema(schema, doc)
}

func validateSchema(schema gojsonschema.JSONLoader, doc []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(problems, "; "))
}
