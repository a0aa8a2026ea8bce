package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripCodeFence removes a surrounding ``` block (with optional language tag)
// from a model response. Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(text); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return text
}

// ParseRawRecords parses a provider response into raw records. The payload
// must be a JSON array, or an object whose first array-valued key (in
// document order) holds the records. Array elements that are not objects are
// skipped and counted.
func ParseRawRecords(text string) (records []RawRecord, skipped int, err error) {
	body := StripCodeFence(text)
	if body == "" {
		return nil, 0, parseErrorf("empty response from AI")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	var top json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, 0, &Error{Kind: KindParse, Message: "failed to parse JSON response from AI. Raw text: " + preview(body), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, 0, parseErrorf("unexpected trailing data after JSON response. Raw text: %s", preview(body))
	}

	arr, err := arrayPayload(top)
	if err != nil {
		return nil, 0, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(arr, &elems); err != nil {
		return nil, 0, &Error{Kind: KindParse, Message: "failed to decode record array", Err: err}
	}

	records = make([]RawRecord, 0, len(elems))
	for _, el := range elems {
		var obj map[string]any
		if firstByte(el) != '{' || json.Unmarshal(el, &obj) != nil {
			skipped++
			continue
		}
		records = append(records, decodeRawRecord(obj))
	}
	return records, skipped, nil
}

func arrayPayload(raw json.RawMessage) (json.RawMessage, error) {
	switch firstByte(raw) {
	case '[':
		return raw, nil
	case '{':
	default:
		return nil, parseErrorf("parsed JSON from AI is not an array")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, &Error{Kind: KindParse, Message: "failed to read JSON object", Err: err}
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, &Error{Kind: KindParse, Message: "failed to read JSON object key", Err: err}
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, &Error{Kind: KindParse, Message: "failed to read JSON object value", Err: err}
		}
		if firstByte(v) == '[' {
			return v, nil
		}
	}
	return nil, parseErrorf("parsed JSON from AI is not an array and no array found within object")
}

func firstByte(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func preview(s string) string {
	return TruncateText(s, 100)
}
