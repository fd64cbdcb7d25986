package prompts

import "fmt"

const renderTemplate = `
		Convert the following Angular component into a single static HTML fragment.

		Component class:
		---
		%s
		---

		Component template:
		---
		%s
		---

		Rules:
		1. Resolve every interpolation ({{ ... }}) to the literal value it would display using the data in the class.
		2. Expand every *ngFor into repeated literal elements and resolve every *ngIf to its outcome.
		3. Remove every event binding, property binding and template reference; keep plain HTML attributes only.
		4. Replace Angular Material elements with equivalent plain HTML elements and classes.
		5. Do not include any script.

		Respond with the fragment wrapped in a single <body>...</body> element and nothing else.
	`

// GetRenderPrompt asks for a binding-free preview of a logic and markup pair.
func GetRenderPrompt(logic, markup string) string {
	return fmt.Sprintf(renderTemplate, logic, markup)
}
