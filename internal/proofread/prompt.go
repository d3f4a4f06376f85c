package proofread

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
)

// Edit is the structured reply expected from the model for one piece of text.
type Edit struct {
	Original  string   `json:"original,omitempty" jsonschema:"description=The verbatim input text you received"`
	Corrected string   `json:"corrected" jsonschema:"required,description=The corrected text; identical to the input when nothing needs fixing"`
	Feedback  []string `json:"feedback" jsonschema:"required,description=Major issues fixed or suggestions for improvement; empty when there are none"`
}

const systemPrompt = "You are an expert proofreader and copy-editor. You meticulously review text for " +
	"grammatical errors, spelling mistakes, punctuation issues, clarity, conciseness and overall " +
	"readability. Return JSON only."

const userPromptTemplate = `Please proofread the following text.
Return a JSON object that matches this JSON schema:

{schema}

"corrected" must equal the input when no corrections are needed.
"feedback" is a list of strings, one per issue fixed or suggestion made.

Original Text:

{text}`

// structuralBuffer covers roles, message framing and JSON punctuation.
const structuralBuffer = 200

var (
	editSchema     = reflectEditSchema()
	editSchemaJSON = mustMarshal(editSchema)
)

func reflectEditSchema() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	b, err := reflector.Reflect(&Edit{}).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m
}

func mustMarshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}

func userPrompt(text string) string {
	r := strings.NewReplacer("{schema}", editSchemaJSON, "{text}", text)
	return r.Replace(userPromptTemplate)
}

// Overhead returns the token cost of the fixed prompt parts around the text.
func Overhead(count func(string) int) int {
	return count(systemPrompt) + count(userPrompt("")) + structuralBuffer
}
