package tika

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	keyContent       = "X-TIKA:content"
	keyEmbeddedRelID = "embeddedRelationshipId"
)

// RawResponse is the (status, body) pair returned by a Transport.
// A nil Body means the server sent no body.
type RawResponse struct {
	Status int     `json:"status"`
	Body   *string `json:"body"`
}

// NewRawResponse builds a RawResponse with a body.
func NewRawResponse(status int, body string) *RawResponse {
	return &RawResponse{Status: status, Body: &body}
}

// ParsedRecord is the normalized form of a Tika response.
type ParsedRecord struct {
	Status   *int     `json:"status,omitempty"`
	Metadata Metadata `json:"metadata"`
	Content  *string  `json:"content"`
}

type part map[string]json.RawMessage

// Normalize reshapes a raw Tika response into a ParsedRecord.
// Only raw transport pairs are accepted; a nil raw yields an empty record.
// Malformed JSON in meta or all mode is returned as an error.
func Normalize(raw *RawResponse, mode ServiceMode) (*ParsedRecord, error) {
	return normalize(raw, mode, log.Logger)
}

func normalize(raw *RawResponse, mode ServiceMode, logger zerolog.Logger) (*ParsedRecord, error) {
	rec := &ParsedRecord{}
	if raw == nil {
		return rec, nil
	}

	status := raw.Status
	rec.Status = &status
	if raw.Body == nil || *raw.Body == "" {
		return rec, nil
	}
	body := *raw.Body

	if mode == ModeText {
		rec.Content = &body
		return rec, nil
	}

	parts, err := decodeParts(body)
	if err != nil {
		return nil, err
	}

	rec.Metadata = Metadata{}
	if mode == ModeMeta {
		for _, p := range parts {
			for _, key := range p.keys() {
				v, err := decodeValue(p[key])
				if err != nil {
					return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedResponse, key, err)
				}
				rec.Metadata.set(key, v)
			}
		}
		return rec, nil
	}

	var (
		content     bytes.Buffer
		contributed bool
		embedded    []string
	)
	for _, p := range parts {
		if rv, ok := p[keyContent]; ok {
			v, err := decodeValue(rv)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedResponse, keyContent, err)
			}
			content.WriteString(v.String())
			contributed = true
		}

		for _, key := range p.keys() {
			if key == keyContent {
				continue
			}
			v, err := decodeValue(p[key])
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedResponse, key, err)
			}
			rec.Metadata.merge(key, v)

			if key == keyEmbeddedRelID && v.String() != "" {
				embedded = append(embedded, v.String())
			}
		}
	}

	if contributed {
		s := content.String()
		rec.Content = &s
	}
	if len(embedded) > 0 {
		logger.Info().Strs("embedded_ids", embedded).Msg("tika.Normalize: embedded files")
	}
	return rec, nil
}

// decodeParts decodes a response body into its part list. A lone JSON object
// is treated as a single part.
func decodeParts(body string) ([]part, error) {
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single part
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return []part{single}, nil
	}

	var parts []part
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parts == nil {
		return nil, fmt.Errorf("%w: body is not a part list", ErrMalformedResponse)
	}
	for i, p := range parts {
		if p == nil {
			return nil, fmt.Errorf("%w: part %d is not an object", ErrMalformedResponse, i)
		}
	}
	return parts, nil
}

func (p part) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
