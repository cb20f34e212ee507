package agent

import "strings"

// stripCodeFences removes markdown code fencing from a model response so
// the remaining text can be parsed as JSON. Models frequently wrap JSON in
// ```json blocks despite being told not to.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
