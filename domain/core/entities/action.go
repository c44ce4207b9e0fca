package entities

import "time"

// Pillar is one of the fixed life-area tags attached to an action.
type Pillar string

const (
	PillarBusiness      Pillar = "business"
	PillarBody          Pillar = "body"
	PillarMind          Pillar = "mind"
	PillarRelationships Pillar = "relationships"
	PillarCraft         Pillar = "craft"
)

// Pillars lists all valid pillar tags.
func Pillars() []Pillar {
	return []Pillar{PillarBusiness, PillarBody, PillarMind, PillarRelationships, PillarCraft}
}

// IsValid reports whether p is a known pillar.
func (p Pillar) IsValid() bool {
	switch p {
	case PillarBusiness, PillarBody, PillarMind, PillarRelationships, PillarCraft:
		return true
	}
	return false
}

// Action is one entry in the user's append-only action log.
type Action struct {
	ID         string
	UserID     string
	Text       string
	Pillar     Pillar
	OccurredAt time.Time
	Rationale  string // optional
}
