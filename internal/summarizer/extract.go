package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	StartMarker = "<s>"
	EndMarker   = "</s>"
)

var (
	ErrNoJSON           = errors.New("no JSON value found in generation")
	ErrTruncatedJSON    = errors.New("generation ends inside a JSON value")
	ErrMissingEndMarker = errors.New("JSON value is not followed by end marker " + EndMarker)
)

// ExtractJSON finds the first complete top-level JSON object or array in a raw
// generation and returns it compacted. The echoed prompt and a leading start
// marker are skipped when present. With strict set, the value must be followed
// by the end marker.
func ExtractJSON(generation, prompt string, strict bool) ([]byte, error) {
	body := generation
	if prompt != "" {
		body, _ = strings.CutPrefix(body, prompt)
	}
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, StartMarker)

	for off := 0; off < len(body); {
		i := strings.IndexAny(body[off:], "{[")
		if i < 0 {
			break
		}
		start := off + i

		dec := json.NewDecoder(strings.NewReader(body[start:]))
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == nil {
			if strict {
				rest := strings.TrimSpace(body[start+int(dec.InputOffset()):])
				if !strings.HasPrefix(rest, EndMarker) {
					return nil, ErrMissingEndMarker
				}
			}
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrTruncatedJSON
		}

		off = start + 1
	}

	return nil, ErrNoJSON
}
