package prompts

import "fmt"

// GetEnhanceWithTestsPrompt asks the model to return the project with
// automated tests added, in the same path-tagged block format.
func GetEnhanceWithTestsPrompt(description, code, language, framework string) (string, string) {
	prompt := `Given the following project description, generated code, language, and framework, enhance the generated code with automated tests.

Project Description: %s
Language: %s
Framework: %s

Generated Code:
%s

Make sure the tests are appropriate for the language and framework being used.
Return every file of the project, original and new, each formatted strictly as:
` + "```" + `[language] // [filepath]
[code]
` + "```" + `
Do not add any text outside the code blocks.`

	system := `You are an AI code generator that specializes in adding automated tests to existing code.`
	return fmt.Sprintf(prompt, description, language, framework, code), system
}
