package prompts

import (
	"encoding/json"
	"fmt"

	"libgenui_server/internal/types"
)

const evaluationTemplate = `
		You are reviewing generated Angular component files before they are shown to a user.

		Files:
		---
		%s
		---

		Check that:
		1. The template only references properties and methods declared in the class body.
		2. The code contains no import statements, decorators or module declarations.
		3. The data is realistic mock data, not placeholders.
		4. The template is well-formed and the styles match the classes used in the template.

		Respond ONLY with a JSON object of exactly this shape and nothing else:
		{"isValid": true, "issues": ["..."], "suggestions": ["..."]}
	`

// GetEvaluationPrompt asks the model to judge files and answer with an EvaluationResult.
func GetEvaluationPrompt(files types.FileSet) string {
	return fmt.Sprintf(evaluationTemplate, encodeFiles(files))
}

func encodeFiles(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
