package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type ReflectOptions struct {
	PruneDays          int
	PruneImportance    float64
	DuplicateThreshold float64
	PromoteAccess      int
	PromoteImportance  float64
}

func (o *ReflectOptions) applyDefaults(cfg ReflectionConfig, dup float64) {
	if o.PruneDays <= 0 {
		o.PruneDays = cfg.PruneDays
	}
	if o.PruneImportance <= 0 {
		o.PruneImportance = cfg.PruneImportance
	}
	if o.DuplicateThreshold <= 0 {
		o.DuplicateThreshold = dup
	}
	if o.PromoteAccess <= 0 {
		o.PromoteAccess = cfg.PromoteAccess
	}
	if o.PromoteImportance <= 0 {
		o.PromoteImportance = cfg.PromoteImportance
	}
}

type DuplicatePair struct {
	AID        string  `json:"a_id"`
	BID        string  `json:"b_id"`
	Similarity float64 `json:"similarity"`
	Diff       string  `json:"diff,omitempty"`
}

type ReflectReport struct {
	Pruned       int             `json:"pruned"`
	Duplicates   []DuplicatePair `json:"duplicates"`
	Promoted     int             `json:"promoted"`
	EdgesCleaned int             `json:"edges_cleaned"`
}

// Reflector runs the maintenance pass: four independent idempotent
// steps, each committing on its own so a failure partway leaves every
// completed step durable and consistent.
type Reflector struct {
	store  *Store
	cfg    *Config
	logger *log.Logger
}

func NewReflector(store *Store, cfg *Config, logger *log.Logger) *Reflector {
	return &Reflector{store: store, cfg: cfg, logger: logger}
}

func (r *Reflector) Run(ctx context.Context, opts ReflectOptions) (*ReflectReport, error) {
	opts.applyDefaults(r.cfg.Reflection, r.cfg.Thresholds.Duplicate)

	report := &ReflectReport{}

	pruned, err := r.prune(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	report.Pruned = pruned

	dups, err := r.findDuplicates(ctx, opts.DuplicateThreshold)
	if err != nil {
		return nil, fmt.Errorf("duplicate detection: %w", err)
	}
	report.Duplicates = dups

	promoted, err := r.promote(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("promotion: %w", err)
	}
	report.Promoted = promoted

	cleaned, err := r.store.CleanupEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph cleanup: %w", err)
	}
	report.EdgesCleaned = cleaned

	r.logger.Info("reflection complete",
		"pruned", report.Pruned,
		"duplicates", len(report.Duplicates),
		"promoted", report.Promoted,
		"edges_cleaned", report.EdgesCleaned)

	return report, nil
}

// prune decays stale low-value memories: importance under the floor
// AND untouched for longer than the staleness window.
func (r *Reflector) prune(ctx context.Context, opts ReflectOptions) (int, error) {
	active, err := r.store.Scan(ctx, StatusActive)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -opts.PruneDays)
	pruned := 0
	for _, m := range active {
		if m.Importance >= opts.PruneImportance {
			continue
		}
		if !m.LastAccessedAt.Before(cutoff) {
			continue
		}
		if err := r.store.SetStatus(ctx, m.ID, StatusDecayed); err != nil {
			return pruned, err
		}
		pruned++
		r.logger.Debug("pruned", "id", m.ID, "importance", m.Importance)
	}
	return pruned, nil
}

// findDuplicates reports near-duplicate pairs by pairwise cosine
// similarity. Report-only: merging is a caller decision.
func (r *Reflector) findDuplicates(ctx context.Context, threshold float64) ([]DuplicatePair, error) {
	active, err := r.store.Scan(ctx, StatusActive)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()
	var pairs []DuplicatePair
	for i := 0; i < len(active); i++ {
		if active[i].Embedding == nil {
			continue
		}
		for j := i + 1; j < len(active); j++ {
			if active[j].Embedding == nil {
				continue
			}
			sim := CosineSimilarity(active[i].Embedding, active[j].Embedding)
			if sim < threshold {
				continue
			}
			pairs = append(pairs, DuplicatePair{
				AID:        active[i].ID,
				BID:        active[j].ID,
				Similarity: sim,
				Diff:       diffPreview(dmp, active[i].Content, active[j].Content),
			})
		}
	}
	return pairs, nil
}

// diffPreview renders a compact text diff so a human can judge a
// merge suggestion without fetching both memories.
func diffPreview(dmp *diffmatchpatch.DiffMatchPatch, a, b string) string {
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	text := dmp.DiffPrettyText(diffs)
	if len(text) > 400 {
		text = text[:400]
	}
	return text
}

// promote moves frequently recalled, valuable episodic memories to the
// semantic tier. One-way: semantic never reverts.
func (r *Reflector) promote(ctx context.Context, opts ReflectOptions) (int, error) {
	active, err := r.store.Scan(ctx, StatusActive)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, m := range active {
		if m.Type != TypeEpisodic {
			continue
		}
		if m.AccessCount < opts.PromoteAccess || m.Importance < opts.PromoteImportance {
			continue
		}
		if err := r.store.SetType(ctx, m.ID, TypeSemantic); err != nil {
			return promoted, err
		}
		promoted++
		r.logger.Debug("promoted", "id", m.ID, "access_count", m.AccessCount)
	}
	return promoted, nil
}
