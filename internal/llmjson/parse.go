// Package llmjson extracts well-formed JSON from noisy language-model
// output: prose before and after the object, markdown code fences, and
// trailing commas are all tolerated. It never retries the model itself;
// retry policy belongs to the caller.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoStructure is returned when the text contains no JSON object (or
// array, for ParseArray) at all.
var ErrNoStructure = eris.New("llmjson: no JSON structure found in response")

// MalformedError wraps a decode failure and keeps the cleaned candidate
// text for diagnostics.
type MalformedError struct {
	Err     error
	Cleaned string
}

func (e *MalformedError) Error() string {
	return "llmjson: malformed JSON structure: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

var (
	trailingObjComma = regexp.MustCompile(`,\s*}`)
	trailingArrComma = regexp.MustCompile(`,\s*]`)
)

// Parse extracts the outermost JSON object from raw and returns it
// strictly decoded. Fails with ErrNoStructure when no object span exists,
// or a *MalformedError when the span does not decode.
func Parse(raw string) (json.RawMessage, error) {
	return extract(raw, '{', '}')
}

// ParseArray extracts the outermost JSON array from raw, for model
// responses that return a bare list.
func ParseArray(raw string) (json.RawMessage, error) {
	return extract(raw, '[', ']')
}

// ParseInto extracts the outermost JSON object and unmarshals it into v.
func ParseInto(raw string, v any) error {
	msg, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg, v); err != nil {
		return &MalformedError{Err: err, Cleaned: string(msg)}
	}
	return nil
}

// ParseArrayInto extracts the outermost JSON array and unmarshals it into v.
func ParseArrayInto(raw string, v any) error {
	msg, err := ParseArray(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg, v); err != nil {
		return &MalformedError{Err: err, Cleaned: string(msg)}
	}
	return nil
}

func extract(raw string, open, close byte) (json.RawMessage, error) {
	text := stripFence(strings.TrimSpace(raw))

	// Greedy span: first opening delimiter to last closing one.
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return nil, ErrNoStructure
	}
	text = text[start : end+1]

	// Normalize line breaks, then drop trailing commas before } or ].
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = trailingObjComma.ReplaceAllString(text, "}")
	text = trailingArrComma.ReplaceAllString(text, "]")

	var msg json.RawMessage
	if err := json.Unmarshal([]byte(text), &msg); err != nil {
		return nil, &MalformedError{Err: err, Cleaned: text}
	}
	return msg, nil
}

// stripFence removes a leading/trailing markdown code fence so the span
// search sees only the fenced body.
func stripFence(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
