package review

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Categories is a categories file loaded from categoriesFile.
type Categories struct {
	Focus    []string        `yaml:"focus,omitempty"`
	Required []RequiredCheck `yaml:"required,omitempty"`
}

// RequiredCheck is a check the model is asked to evaluate on every file.
type RequiredCheck struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// LoadCategories loads a categories file from disk. Returns nil Categories and nil error if path is empty.
func LoadCategories(path string) (*Categories, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories file: %w", err)
	}
	var c Categories
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing categories file: %w", err)
	}
	return &c, nil
}

// CategoryText joins the env text with the entries of a categories file.
// env is kept byte for byte; the file entries follow it on a new line.
func CategoryText(env string, c *Categories) string {
	entries := c.text()
	if entries == "" {
		return env
	}
	if env == "" {
		return entries
	}
	if !strings.HasSuffix(env, "\n") {
		env += "\n"
	}
	return env + entries
}

func (c *Categories) text() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, f := range c.Focus {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if len(c.Required) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Required checks (always evaluate these):\n")
		for _, req := range c.Required {
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
