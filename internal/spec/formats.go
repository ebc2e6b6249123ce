package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (*rawDocument, error) {
	var raw rawDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &raw, nil
}

// decodeMarkdown reads the YAML front matter between the leading '---'
// lines and returns the rest as the body
func decodeMarkdown(data []byte) (*rawDocument, string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return nil, "", fmt.Errorf("missing front matter: the file must start with a '---' line")
	}

	lines := strings.SplitAfter(text[len("---\n"):], "\n")
	for i, line := range lines {
		if strings.TrimRight(line, " \t\n") != "---" {
			continue
		}
		front := strings.Join(lines[:i], "")
		body := strings.TrimLeft(strings.Join(lines[i+1:], ""), "\n")

		raw, err := decodeYAML([]byte(front))
		if err != nil {
			return nil, "", fmt.Errorf("front matter: %w", err)
		}
		return raw, body, nil
	}

	return nil, "", fmt.Errorf("unterminated front matter: no closing '---' line")
}

// decodeJSON accepts JSON with comments and trailing commas
func decodeJSON(data []byte) (*rawDocument, error) {
	var raw rawDocument
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &raw, nil
}
