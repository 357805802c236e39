// Package dedup merges collector output by removing exact and near duplicates.
package dedup

import (
	"log/slog"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
)

// DefaultSimilarityThreshold is the Jaccard similarity above which the later
// of two items is considered a near duplicate.
const DefaultSimilarityThreshold = 0.8

// Result is the outcome of a deduplication run.
// len(Items) + TotalRemoved always equals the input length.
type Result struct {
	Items                       []entity.RawItem
	HashDuplicatesRemoved       int
	SimilarityDuplicatesRemoved int
	TotalRemoved                int
}

// Engine removes duplicates in two passes: exact content hash, then
// token-set similarity.
type Engine struct {
	// Threshold is compared with strict greater-than. Zero means DefaultSimilarityThreshold.
	Threshold float64
}

// Deduplicate runs the default engine over items.
func Deduplicate(items []entity.RawItem) Result {
	return Engine{}.Deduplicate(items)
}

// Deduplicate keeps the first occurrence of every content hash, then drops
// any later survivor whose similarity with an earlier kept survivor is
// strictly above the threshold. Surviving order follows input order.
//
// The similarity pass is pairwise and not transitive: if A~B and B~C but not
// A~C, then B is dropped and C is kept, even though C relates to A through B.
func (e Engine) Deduplicate(items []entity.RawItem) Result {
	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	// exact pass
	seen := make(map[string]struct{}, len(items))
	unique := make([]entity.RawItem, 0, len(items))
	for _, item := range items {
		hash := item.ContentHash
		if hash == "" {
			hash = entity.HashContent(item.Content)
		}
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}
		unique = append(unique, item)
	}
	hashRemoved := len(items) - len(unique)

	// similarity pass over survivors, O(n²); per-source caps keep n small
	kept := make([]entity.RawItem, 0, len(unique))
	keptTokens := make([]map[string]struct{}, 0, len(unique))
	for _, item := range unique {
		tokens := tokenSet(item.Content)
		duplicate := false
		for i, other := range keptTokens {
			if sim := Jaccard(tokens, other); sim > threshold {
				slog.Debug("similarity duplicate dropped",
					slog.String("dropped_id", item.ID),
					slog.String("kept_id", kept[i].ID),
					slog.Float64("similarity", sim))
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, item)
		keptTokens = append(keptTokens, tokens)
	}
	simRemoved := len(unique) - len(kept)

	metrics.RecordDedup(hashRemoved, simRemoved)

	return Result{
		Items:                       kept,
		HashDuplicatesRemoved:       hashRemoved,
		SimilarityDuplicatesRemoved: simRemoved,
		TotalRemoved:                hashRemoved + simRemoved,
	}
}

func tokenSet(content string) map[string]struct{} {
	tokens := entity.Tokens(content)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|. An empty set is never similar to anything,
// so items whose content normalizes to nothing are only removed by hash.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
