// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"seedfast/dataorch/internal/errors"
)

var fenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*\\n(.*?)\\n?```$")

// Decomposition maps a sub-agent name to the sub-question it must answer.
type Decomposition map[string]string

// Decode parses model output into a decomposition and checks it against the
// catalog: every sub-agent must have a non-empty sub-question and no other
// keys are allowed. One surrounding markdown code fence is tolerated.
func (c *Catalog) Decode(raw string) (Decomposition, error) {
	text := StripFence(raw)

	fields, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	for key := range fields {
		if _, ok := c.Get(key); !ok {
			return nil, errors.New(errors.DecompositionFailed, fmt.Sprintf("unknown sub-agent %q in decomposition", key))
		}
	}

	d := make(Decomposition, len(c.Agents))
	for _, name := range c.Names() {
		rawValue, ok := fields[name]
		if !ok {
			return nil, errors.New(errors.DecompositionFailed, fmt.Sprintf("missing sub-question for %q", name))
		}
		var q string
		if err := json.Unmarshal(rawValue, &q); err != nil {
			return nil, errors.Wrap(errors.DecompositionFailed, fmt.Sprintf("sub-question for %q is not a string", name), err)
		}
		if strings.TrimSpace(q) == "" {
			return nil, errors.New(errors.DecompositionFailed, fmt.Sprintf("empty sub-question for %q", name))
		}
		d[name] = strings.TrimSpace(q)
	}
	return d, nil
}

// decodeObject reads one JSON object into raw members. Repeated keys and
// anything after the object are rejected.
func decodeObject(text string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(text))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.DecompositionFailed, "malformed decomposition", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New(errors.DecompositionFailed, "malformed decomposition: expected an object")
	}

	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.DecompositionFailed, "malformed decomposition", err)
		}
		key, _ := tok.(string)
		if _, dup := fields[key]; dup {
			return nil, errors.New(errors.DecompositionFailed, fmt.Sprintf("duplicate sub-agent %q in decomposition", key))
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrap(errors.DecompositionFailed, "malformed decomposition", err)
		}
		fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.DecompositionFailed, "malformed decomposition", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.DecompositionFailed, "malformed decomposition: trailing data after object")
	}
	return fields, nil
}

// StripFence removes a single markdown code fence around s, if present.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// String renders the decomposition as indented JSON for display.
func (d Decomposition) String() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]string(d)); err != nil {
		return fmt.Sprintf("%v", map[string]string(d))
	}
	return strings.TrimSpace(buf.String())
}
