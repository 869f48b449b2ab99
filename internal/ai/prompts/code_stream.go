package prompts

import (
	"fmt"
	"strings"
)

// ProjectBrief is the user's project request in prompt form.
type ProjectBrief struct {
	ProjectName     string
	Description     string
	Framework       string
	ContentLanguage string
	Features        []string
	Database        string
	Authentication  bool
	Deployment      string
}

// String renders the brief as the line-oriented summary the model receives.
func (b ProjectBrief) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", b.ProjectName)
	fmt.Fprintf(&sb, "Framework: %s\n", b.Framework)
	if b.ContentLanguage != "" {
		fmt.Fprintf(&sb, "Content Language: %s\n", b.ContentLanguage)
	}
	fmt.Fprintf(&sb, "Features: %s\n", strings.Join(b.Features, ", "))
	database := b.Database
	if database == "" {
		database = "None"
	}
	fmt.Fprintf(&sb, "Database: %s\n", database)
	auth := "No"
	if b.Authentication {
		auth = "Yes"
	}
	fmt.Fprintf(&sb, "Authentication: %s\n", auth)
	if b.Deployment != "" {
		fmt.Fprintf(&sb, "Deployment: %s\n", b.Deployment)
	}
	if b.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", b.Description)
	}
	return sb.String()
}

const codeStreamSystemPrompt = `You are an expert code generation AI.
Your sole purpose is to generate clean, complete, and self-contained code based on the user's request.`

const codeStreamTemplate = `Generate a full project structure based on the user request.
For each file, format the output strictly as follows:
` + "```" + `[language] // [filepath]
[code]
` + "```" + `

Example:
` + "```" + `tsx // app/page.tsx
import React from 'react';

export default function Page() {
  return <h1>Hello, World!</h1>;
}
` + "```" + `

Do not add any conversational text, explanations, or markdown formatting around the code blocks.
Only output the raw code blocks in the specified format.

Generate code for an application based on the following description:

%s
Framework:
%s

Selected Features:
- %s

Please generate the complete project structure and code.
`

// GetCodeStreamPrompt returns the user and system prompts asking the model to
// emit the whole project as path-tagged fenced blocks.
func GetCodeStreamPrompt(brief ProjectBrief) (string, string) {
	framework := brief.Framework
	if framework == "" {
		framework = "Next.js"
	}
	features := "None"
	if len(brief.Features) > 0 {
		features = strings.Join(brief.Features, "\n- ")
	}
	return fmt.Sprintf(codeStreamTemplate, brief.String(), framework, features), codeStreamSystemPrompt
}
