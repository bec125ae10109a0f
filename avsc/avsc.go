// Package avsc reads the identifying metadata of Avro schema documents.
//
// The avsc package does not validate schema documents. It extracts the
// few top-level properties needed to decide where the types generated
// from a schema belong; parsing and validating the full schema is left
// to the avrogen package.
package avsc

import (
	"encoding/json"
	"fmt"
)

// RecordType is the value of the "type" property of record schemas.
const RecordType = "record"

// Metadata holds the top-level identifying properties of a schema
// document. Namespace is empty when the schema does not declare one.
type Metadata struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// ParseMetadata decodes the metadata of the schema document in data.
// Properties other than type, name and namespace are ignored.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parse schema metadata: %w", err)
	}
	return m, nil
}

// FullName returns the namespace-qualified name of the schema.
func (m Metadata) FullName() string {
	if m.Namespace == "" {
		return m.Name
	}
	return m.Namespace + "." + m.Name
}

// IsRecord reports whether the schema declares a record type.
func (m Metadata) IsRecord() bool {
	return m.Type == RecordType
}
