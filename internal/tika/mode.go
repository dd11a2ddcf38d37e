package tika

import (
	"fmt"
	"strings"
)

// ServiceMode selects which subset of analysis the Tika server performs.
type ServiceMode string

const (
	// ModeMeta returns metadata only.
	ModeMeta ServiceMode = "meta"
	// ModeText returns extracted text only.
	ModeText ServiceMode = "text"
	// ModeAll returns recursive content and metadata for the document and
	// every embedded file.
	ModeAll ServiceMode = "all"
)

const (
	pathMeta      = "/meta"
	pathText      = "/tika"
	pathRmetaText = "/rmeta/text"
	pathRmetaXML  = "/rmeta/xml"
)

// ParseServiceMode validates a user supplied mode. An empty string yields ModeAll.
func ParseServiceMode(s string) (ServiceMode, error) {
	switch ServiceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeMeta:
		return ModeMeta, nil
	case ModeText:
		return ModeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidServiceMode, s)
	}
}

// ServicePath maps a mode to the Tika server resource it is served by.
// Unknown modes fall back to the recursive endpoint.
func ServicePath(mode ServiceMode, wantXML bool) string {
	switch mode {
	case ModeMeta:
		return pathMeta
	case ModeText:
		return pathText
	default:
		if wantXML {
			return pathRmetaXML
		}
		return pathRmetaText
	}
}

// acceptFor is the Accept header the client sends for a mode.
func acceptFor(mode ServiceMode) string {
	if mode == ModeText {
		return "text/plain"
	}
	return "application/json"
}
