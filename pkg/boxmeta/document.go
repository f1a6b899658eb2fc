// Package boxmeta classifies a downloaded payload as a box metadata document
// or a raw archive, and parses the metadata wire format.
package boxmeta

import (
	"encoding/json"
	"fmt"
	"mime"
)

// Document is the parsed box metadata document (the wire format of §3).
type Document struct {
	Name     string    `json:"name"`
	Versions []Version `json:"versions"`
}

// Version is one version entry of a Document.
type Version struct {
	Version   string     `json:"version"`
	Providers []Provider `json:"providers"`
}

// Provider is one provider entry of a Version.
type Provider struct {
	Name                string `json:"name"`
	URL                 string `json:"url"`
	Architecture        string `json:"architecture,omitempty"`
	DefaultArchitecture bool   `json:"default_architecture,omitempty"`
	ChecksumType        string `json:"checksum_type,omitempty"`
	Checksum            string `json:"checksum,omitempty"`
}

// IsMetadata classifies a downloaded payload as metadata (true) or a raw
// archive (false).
//
// contentType is the transport-reported media type, if any (an empty
// string when the transport didn't surface one, e.g. a file:// fetch).
// Classification order: if contentType's essence is application/json,
// it's metadata; otherwise fall back to attempting a JSON parse of body.
func IsMetadata(contentType string, body []byte) bool {
	if contentType != "" {
		essence, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return essence == "application/json"
		}
	}

	var probe json.RawMessage
	return json.Unmarshal(body, &probe) == nil
}

// Parse decodes a metadata document from body. A document missing a name
// or any versions is rejected as malformed.
func Parse(body []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("malformed box metadata: %w", err)
	}

	if doc.Name == "" {
		return nil, fmt.Errorf("malformed box metadata: missing name")
	}
	if len(doc.Versions) == 0 {
		return nil, fmt.Errorf("malformed box metadata: no versions")
	}

	return &doc, nil
}
