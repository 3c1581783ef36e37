package internal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("memory not found")
	ErrModelUnavailable = errors.New("embedding model unavailable")
	ErrValidation       = errors.New("invalid input")
)

type MemoryType string

const (
	TypeEpisodic MemoryType = "episodic"
	TypeSemantic MemoryType = "semantic"
)

func ParseMemoryType(s string) (MemoryType, error) {
	switch MemoryType(s) {
	case TypeEpisodic, TypeSemantic:
		return MemoryType(s), nil
	case "":
		return TypeEpisodic, nil
	}
	return "", fmt.Errorf("%w: unknown memory type %q", ErrValidation, s)
}

type MemoryStatus string

const (
	StatusActive  MemoryStatus = "active"
	StatusDecayed MemoryStatus = "decayed"
)

const (
	RelationRelatesTo   = "relates_to"
	RelationContradicts = "contradicts"
	RelationSupersedes  = "supersedes"
	RelationCausedBy    = "caused_by"
	RelationPartOf      = "part_of"
)

type Memory struct {
	ID             string
	Type           MemoryType
	Content        string
	Embedding      []float32 // nil when the model was unavailable at write time
	Entities       []string
	Importance     float64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int
	Status         MemoryStatus
}

func NewMemory(content string, typ MemoryType) *Memory {
	now := time.Now().UTC()
	return &Memory{
		ID:             uuid.NewString(),
		Type:           typ,
		Content:        content,
		CreatedAt:      now,
		LastAccessedAt: now,
		Status:         StatusActive,
	}
}

type Edge struct {
	SourceID      string
	TargetID      string
	Relation      string
	Weight        float64
	AutoGenerated bool
}

// Other returns the endpoint of e that is not id.
func (e Edge) Other(id string) string {
	if e.SourceID == id {
		return e.TargetID
	}
	return e.SourceID
}

func ValidateImportance(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: importance %v outside [0,1]", ErrValidation, v)
	}
	return nil
}

// ScoreImportance is the heuristic used when the caller does not supply
// an importance: longer content and entity-rich content score higher.
func ScoreImportance(content string, entities []string) float64 {
	length := float64(len(content))
	if length > 400 {
		length = 400
	}
	richness := float64(len(entities))
	if richness > 5 {
		richness = 5
	}

	score := 0.3 + 0.4*(length/400) + 0.06*richness
	if score > 1 {
		score = 1
	}
	return score
}
