package prompts

import (
	"fmt"
	"strings"
)

const generationTemplate = `
		You are an expert Angular developer. Generate a realistic page for an Angular application using Angular Material components.

		The page must implement the following description:

		---
		%s
		---

		Requirements:
		1. Use Angular Material components and Material icons where appropriate.
		2. Include realistic mock data (user names, descriptions, dates, prices, etc.). Never use placeholders such as "Lorem ipsum", "TODO" or "Item 1".
		3. Create a complete page layout.
		4. Use proper Angular template syntax.
		5. DO NOT ADD ANY IMPORT STATEMENTS.
		6. DO NOT ADD ANY COMPONENT DECORATORS, MODULE DECLARATIONS OR EXPORTS THAT REFERENCE OTHER FILES.
		7. ADD ONLY THE CLASS BODY CODE in the ts file.
		8. ALL TYPES HAVE TO BE any or any[].

		You MUST produce exactly these files:
%s
		Output format:
		The response MUST be a valid JSON array exactly matching this structure, with double quotes escaped as \" and line breaks written as \n inside strings:
		` + "```json" + `
		[
		  {"filename": "%s", "content": "{\n  // component logic here\n}"},
		  {"filename": "%s", "content": "<div>template here</div>"},
		  {"filename": "%s", "content": ".container {\n  display: flex;\n}"}
		]
		` + "```" + `

		Only include the JSON array, no extra explanation. Your output will be parsed and saved as project files.
	`

// GetGenerationPrompt builds the code-generation instruction for a page
// description. requiredFiles lists the exact filenames the model must emit,
// ordered logic, markup, style.
func GetGenerationPrompt(description string, requiredFiles []string) string {
	return fmt.Sprintf(generationTemplate, description, fileBullets(requiredFiles), fileAt(requiredFiles, 0), fileAt(requiredFiles, 1), fileAt(requiredFiles, 2))
}

func fileBullets(files []string) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "\t\t*   `%s`\n", f)
	}
	return b.String()
}

func fileAt(files []string, i int) string {
	if i < len(files) {
		return files[i]
	}
	return "..."
}
