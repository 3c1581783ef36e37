package v1

import "time"

// Memory is a stored memory as seen by API consumers.
type Memory struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Entities   []string  `json:"entities,omitempty"`
	Importance float64   `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// RememberResult describes a newly stored memory.
type RememberResult struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Importance   float64  `json:"importance"`
	Entities     []string `json:"entities"`
	EdgesCreated int      `json:"edges_created"`
	Degraded     bool     `json:"degraded"`
}

// RecallHit is one ranked recall result.
type RecallHit struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	ViaGraph bool    `json:"via_graph"`
	Type     string  `json:"type"`
}

// RecallResult is a ranked result set; Degraded marks keyword
// fallback.
type RecallResult struct {
	Hits     []RecallHit `json:"hits"`
	Degraded bool        `json:"degraded"`
}

// ReflectResult summarizes one maintenance pass.
type ReflectResult struct {
	Pruned          int `json:"pruned"`
	DuplicatesFound int `json:"duplicates_found"`
	Promoted        int `json:"promoted"`
	EdgesCleaned    int `json:"edges_cleaned"`
}
