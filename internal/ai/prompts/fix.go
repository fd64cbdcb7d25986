package prompts

import (
	"fmt"

	"libgenui_server/internal/types"
)

const fixTemplate = `
		You are a code assistant helping to **fix an existing Angular component**.

		Here are the current files:
		---
		%s
		---

		A review found the following problems:
		---
		%s
		---

		Fix every issue and apply the suggestions while keeping the same filenames.
		The corrected set MUST contain exactly these files:
%s
		The same rules still apply: no import statements, no decorators, only the class body in the ts file, realistic mock data.

		Respond with the complete corrected file set in the following format, with double quotes escaped as \" and line breaks written as \n inside strings:
		` + "```json" + `
		[
		  {"filename": "%s", "content": "..."},
		  {"filename": "%s", "content": "..."},
		  {"filename": "%s", "content": "..."}
		]
		` + "```" + `

		Only include the JSON array, no extra explanation.
	`

// GetFixPrompt carries the previous files and their evaluation and asks for
// a corrected file set in the generation output shape. Without
// requiredFiles the current filenames are requested.
func GetFixPrompt(files types.FileSet, evaluation types.EvaluationResult, requiredFiles []string) string {
	if len(requiredFiles) == 0 {
		for _, f := range files {
			requiredFiles = append(requiredFiles, f.Filename)
		}
	}
	return fmt.Sprintf(fixTemplate,
		encodeFiles(files),
		encodeFiles(evaluation),
		fileBullets(requiredFiles),
		fileAt(requiredFiles, 0), fileAt(requiredFiles, 1), fileAt(requiredFiles, 2))
}
