// Package resolver locates an on-screen element from a fuzzy description
// inside a live accessibility tree.
package resolver

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/droidreplay/pkg/uitree"
)

// Criteria is a partial element description. Empty fields mean "don't care".
type Criteria struct {
	Text               string `json:"text,omitempty" yaml:"text,omitempty"`
	ContentDescription string `json:"contentDescription,omitempty" yaml:"contentDescription,omitempty"`
	ResourceID         string `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`

	// ClassName is recorded for reference only; it does not score.
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

// criteriaRaw is used for YAML parsing.
type criteriaRaw struct {
	Text               string `yaml:"text"`
	ContentDescription string `yaml:"contentDescription"`
	Description        string `yaml:"desc"` // Shorthand for contentDescription
	ResourceID         string `yaml:"resourceId"`
	ID                 string `yaml:"id"` // Shorthand for resourceId
	ClassName          string `yaml:"className"`
}

// UnmarshalYAML allows Criteria to be unmarshaled from a string (text) or struct.
func (c *Criteria) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Text = node.Value
		return nil
	}

	var raw criteriaRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.Text = raw.Text
	c.ContentDescription = raw.ContentDescription
	c.ResourceID = raw.ResourceID
	c.ClassName = raw.ClassName

	if c.ContentDescription == "" {
		c.ContentDescription = raw.Description
	}
	if c.ResourceID == "" {
		c.ResourceID = raw.ID
	}
	return nil
}

// FromNode captures the identifying attributes of a node.
func FromNode(n uitree.FlatNode) Criteria {
	return Criteria{
		Text:               n.Text,
		ContentDescription: n.ContentDescription,
		ResourceID:         n.ResourceID,
		ClassName:          n.ClassName,
	}
}

// IsEmpty returns true if no scored field is set.
func (c Criteria) IsEmpty() bool {
	return c.Text == "" && c.ContentDescription == "" && c.ResourceID == ""
}

// Describe returns a human-readable description.
func (c Criteria) Describe() string {
	switch {
	case c.Text != "":
		return c.Text
	case c.ContentDescription != "":
		return c.ContentDescription
	case c.ResourceID != "":
		return "#" + c.ResourceID
	default:
		return "Element"
	}
}

// DescribeQuoted returns a quoted description like text="value" or id="value".
func (c Criteria) DescribeQuoted() string {
	switch {
	case c.Text != "":
		return "text=" + strconv.Quote(c.Text)
	case c.ContentDescription != "":
		return "desc=" + strconv.Quote(c.ContentDescription)
	case c.ResourceID != "":
		return "id=" + strconv.Quote(c.ResourceID)
	default:
		return "<empty>"
	}
}
