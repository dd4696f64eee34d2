// ABOUTME: Shared document metadata embedded by every stored entity.
// ABOUTME: Carries the document id and engine-owned bookkeeping timestamps.
package models

import "time"

// Meta is embedded in every entity persisted through the repository
// layer. ID mirrors the storage document key. CreatedAt and ModifiedAt
// are stamped by the repository engine; values set by callers never
// survive a write.
type Meta struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"_createdAt,omitzero"`
	ModifiedAt time.Time `json:"_modifiedAt,omitzero"`
}

// GetID returns the document id.
func (m *Meta) GetID() string { return m.ID }

// SetID records the document id after the storage key is assigned.
func (m *Meta) SetID(id string) { m.ID = id }
