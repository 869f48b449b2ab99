package prompts

import "fmt"

// GetFeatureSuggestionPrompt asks for a JSON array of feature names.
func GetFeatureSuggestionPrompt(description string) (string, string) {
	prompt := `
		Based on the following project description, suggest a list of features that would be beneficial to the project.

		Project Description:
		---
		%s
		---

		Respond ONLY with a JSON object of the form:
		{"suggestedFeatures": ["feature one", "feature two"]}
	`
	system := `You are a project architect. Keep each feature short, one line, no numbering.`
	return fmt.Sprintf(prompt, description), system
}
