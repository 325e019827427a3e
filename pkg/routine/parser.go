package routine

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ParseFile parses a routine file.
func ParseFile(path string) (*Routine, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided routine file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses routine YAML content: an optional header document followed by
// the step list.
func Parse(data []byte, sourcePath string) (*Routine, error) {
	parts := splitYAMLDocuments(string(data))

	r := &Routine{
		SourcePath: sourcePath,
	}

	if len(parts) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    1,
			Message: "empty routine file",
		}
	}

	if len(parts) == 1 {
		if err := parseSteps(parts[0], r); err != nil {
			return nil, err
		}
	} else {
		if err := parseHeader(parts[0], r); err != nil {
			return nil, err
		}
		if err := parseSteps(parts[1], r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func splitYAMLDocuments(content string) []string {
	var parts []string
	var current strings.Builder
	inMultiline := false
	multilineIndent := 0

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inMultiline {
			if strings.HasSuffix(trimmed, "|") || strings.HasSuffix(trimmed, ">") ||
				strings.HasSuffix(trimmed, "|-") || strings.HasSuffix(trimmed, ">-") {
				inMultiline = true
				if i+1 < len(lines) {
					next := lines[i+1]
					multilineIndent = len(next) - len(strings.TrimLeft(next, " \t"))
				}
			}
		} else {
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			if trimmed != "" && indent < multilineIndent {
				inMultiline = false
			}
		}

		if !inMultiline && trimmed == "---" && strings.TrimLeft(line, " \t") == "---" {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}

	if current.Len() > 0 {
		s := strings.TrimSpace(current.String())
		if s != "" {
			parts = append(parts, current.String())
		}
	}

	return parts
}

func parseHeader(content string, r *Routine) error {
	var header Header
	if err := yaml.Unmarshal([]byte(content), &header); err != nil {
		return &ParseError{
			Path:    r.SourcePath,
			Message: fmt.Sprintf("invalid header: %v", err),
		}
	}
	r.Header = header
	return nil
}

func parseSteps(content string, r *Routine) error {
	var rawSteps []yaml.Node
	if err := yaml.Unmarshal([]byte(content), &rawSteps); err != nil {
		return &ParseError{
			Path:    r.SourcePath,
			Message: fmt.Sprintf("invalid steps: %v", err),
		}
	}

	for i := range rawSteps {
		step, err := parseStep(&rawSteps[i], r.SourcePath)
		if err != nil {
			return err
		}
		r.Steps = append(r.Steps, step)
	}

	return nil
}

func parseStep(node *yaml.Node, sourcePath string) (Step, error) {
	// Scalar nodes like "- home" (no colon, no params)
	if node.Kind == yaml.ScalarNode {
		if !isStepType(node.Value) {
			return nil, &ParseError{
				Path:    sourcePath,
				Line:    node.Line,
				Message: fmt.Sprintf("unknown step type: %s", node.Value),
			}
		}
		return decodeStep(StepType(node.Value), &yaml.Node{Kind: yaml.MappingNode, Line: node.Line}, sourcePath)
	}

	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "step must be a single-key mapping or command name",
		}
	}

	key, value := node.Content[0].Value, node.Content[1]
	if !isStepType(key) {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("unknown step type: %s", key),
		}
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		value = &yaml.Node{Kind: yaml.MappingNode, Line: value.Line}
	}

	return decodeStep(StepType(key), value, sourcePath)
}

func isStepType(key string) bool {
	_, ok := defaultSettleMs[StepType(key)]
	return ok
}

func decodeStep(stepType StepType, valueNode *yaml.Node, sourcePath string) (Step, error) {
	var (
		step Step
		err  error
	)

	switch stepType {
	case StepHome:
		s := &HomeStep{}
		err = decodeMapping(valueNode, s)
		s.StepType = stepType
		step = s

	case StepBack:
		s := &BackStep{}
		err = decodeMapping(valueNode, s)
		s.StepType = stepType
		step = s

	case StepClearText:
		s := &ClearTextStep{}
		err = decodeMapping(valueNode, s)
		s.StepType = stepType
		step = s

	case StepSleep:
		s := &SleepStep{}
		if valueNode.Kind == yaml.ScalarNode {
			s.Seconds, err = strconv.ParseFloat(valueNode.Value, 64)
		} else {
			err = decodeMapping(valueNode, s)
		}
		if err == nil && s.Seconds < 0 {
			err = fmt.Errorf("sleep seconds must not be negative")
		}
		s.StepType = stepType
		step = s

	case StepPressKey:
		s := &PressKeyStep{}
		if valueNode.Kind == yaml.ScalarNode {
			code, ok := core.KeyCode(valueNode.Value)
			if !ok {
				err = fmt.Errorf("unknown key: %s", valueNode.Value)
			}
			s.KeyCode = code
		} else {
			err = decodeMapping(valueNode, s)
		}
		s.StepType = stepType
		step = s

	case StepInputText:
		s := &InputTextStep{}
		if valueNode.Kind == yaml.ScalarNode {
			s.Text = valueNode.Value
		} else {
			err = decodeMapping(valueNode, s)
		}
		s.StepType = stepType
		step = s

	case StepTapOn:
		s := &TapOnStep{}
		if valueNode.Kind == yaml.ScalarNode {
			s.Criteria.Text = valueNode.Value
		} else if err = decodeMapping(valueNode, s); err == nil {
			// Second pass reads the criteria keys, including desc/id shorthands.
			err = valueNode.Decode(&s.Criteria)
		}
		s.StepType = stepType
		step = s

	case StepLongPressOnPoint:
		s := &LongPressOnPointStep{}
		err = decodeMapping(valueNode, s)
		if err == nil && s.DurationMs == 0 {
			s.DurationMs = 1000
		}
		s.StepType = stepType
		step = s
	}

	if err != nil {
		return nil, wrapParseError(sourcePath, valueNode.Line, stepType, err)
	}
	return step, nil
}

func decodeMapping(node *yaml.Node, v interface{}) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping")
	}
	return node.Decode(v)
}

func wrapParseError(path string, line int, stepType StepType, err error) error {
	return &ParseError{
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf("%s: %v", stepType, err),
	}
}
