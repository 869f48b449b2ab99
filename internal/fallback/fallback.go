package fallback

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"codegen_server/internal/types"
)

// Paths of the synthesized files.
const (
	EntryPath    = "app/page.tsx"
	ManifestPath = "package.json"
	ReadmePath   = "README.md"
)

type manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Synthesize guarantees a usable file set for non-empty model output. When
// the extractor found files they are returned unchanged. When it found none,
// the whole trimmed output becomes the entry file and a manifest plus a
// readme are added. Empty output yields no files.
func Synthesize(raw string, files []types.GeneratedFile, projectName string) []types.GeneratedFile {
	if len(files) > 0 {
		return files
	}
	code := strings.TrimSpace(raw)
	if code == "" {
		return []types.GeneratedFile{}
	}

	return []types.GeneratedFile{
		{Name: EntryPath, Content: code},
		{Name: ManifestPath, Content: manifestFor(projectName)},
		{Name: ReadmePath, Content: readmeFor(projectName)},
	}
}

// Slug lower-cases name and replaces each whitespace run with a hyphen.
func Slug(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "project"
	}
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), "-")
}

func manifestFor(projectName string) string {
	data, err := json.MarshalIndent(manifest{
		Name:        Slug(projectName),
		Version:     "1.0.0",
		Description: "Generated by CodeAI",
	}, "", "  ")
	if err != nil {
		// a struct of strings always marshals
		panic(err)
	}
	return string(data)
}

func readmeFor(projectName string) string {
	title := strings.TrimSpace(projectName)
	if title == "" {
		title = "Generated Project"
	}
	return fmt.Sprintf("# %s\n\nThis project was generated by CodeAI.", title)
}
