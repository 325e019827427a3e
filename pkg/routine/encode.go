package routine

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Encode renders r as two YAML documents: header, then steps. Output depends
// only on r, so the same routine always encodes to the same bytes.
func Encode(r *Routine) ([]byte, error) {
	var header yaml.Node
	if err := header.Encode(r.Header); err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}

	steps := &yaml.Node{Kind: yaml.SequenceNode}
	for i, step := range r.Steps {
		node, err := encodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("failed to encode step %d: %w", i+1, err)
		}
		steps.Content = append(steps.Content, node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&header); err != nil {
		return nil, err
	}
	if err := enc.Encode(steps); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes r to path.
func WriteFile(path string, r *Routine) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //#nosec G306 -- routine files are not secret
}

// encodeStep emits "- type" when the body is empty and "- type: {body}"
// otherwise.
func encodeStep(step Step) (*yaml.Node, error) {
	name := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(step.Type())}

	body := &yaml.Node{}
	if err := body.Encode(step); err != nil {
		return nil, err
	}
	if body.Kind == yaml.MappingNode && len(body.Content) == 0 {
		return name, nil
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{name, body}}, nil
}
