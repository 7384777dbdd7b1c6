package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slides2video/internal/errs"
)

// WriteScenario writes a scenario to a YAML file, creating its directory.
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadScenario reads a slide list from YAML or JSON. Both the
// {version, slides} form and a bare list are accepted.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config(errs.NoSlide, "read slide list: %v", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a slide list document.
func ParseScenario(data []byte) (*Scenario, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Config(errs.NoSlide, "parse slide list: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errs.Config(errs.NoSlide, "slide list is empty")
	}

	var scenario Scenario
	var err error
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&scenario.Slides)
	case yaml.MappingNode:
		err = root.Decode(&scenario)
	default:
		err = fmt.Errorf("expected a list or a mapping, got %s", root.ShortTag())
	}
	if err != nil {
		return nil, errs.Config(errs.NoSlide, "parse slide list: %v", err)
	}
	if len(scenario.Slides) == 0 {
		return nil, errs.Config(errs.NoSlide, "slide list has no slides")
	}
	return &scenario, nil
}

// UnmarshalYAML also accepts the camel-case textReveal key used by JSON
// slide lists.
func (s *Slide) UnmarshalYAML(n *yaml.Node) error {
	type plain Slide
	var raw struct {
		Plain      plain    `yaml:",inline"`
		TextReveal *float64 `yaml:"textReveal"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*s = Slide(raw.Plain)
	if s.TextReveal == nil {
		s.TextReveal = raw.TextReveal
	}
	return nil
}
