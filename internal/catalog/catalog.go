package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Option is one selectable value shown to users and used in prompts.
type Option struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog lists the frameworks, features, databases and deployment targets
// a project request can refer to.
type Catalog struct {
	Frameworks  []Option `yaml:"frameworks" json:"frameworks"`
	Features    []Option `yaml:"features" json:"features"`
	Databases   []Option `yaml:"databases" json:"databases"`
	Deployments []Option `yaml:"deployments" json:"deployments"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(c.Frameworks) == 0 {
		return nil, fmt.Errorf("parsing catalog: no frameworks defined")
	}
	return &c, nil
}

// FrameworkLabel returns the display label for a framework value. Unknown
// values are returned as given so free-text hints still reach the prompt.
func (c *Catalog) FrameworkLabel(value string) string {
	return label(c.Frameworks, value)
}

// FeatureLabels maps feature values to labels, keeping unknown entries.
func (c *Catalog) FeatureLabels(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, label(c.Features, v))
	}
	return out
}

// DatabaseLabel returns the display label for a database value.
func (c *Catalog) DatabaseLabel(value string) string {
	return label(c.Databases, value)
}

// DeploymentLabel returns the display label for a deployment target.
func (c *Catalog) DeploymentLabel(value string) string {
	return label(c.Deployments, value)
}

func label(opts []Option, value string) string {
	for _, o := range opts {
		if strings.EqualFold(o.Value, value) {
			return o.Label
		}
	}
	return value
}
