package retrieval

import "sort"

// Fuse merges per-collection result lists that were concatenated in Targets
// order, sorting by score descending and capping at 2×topK. The sort is
// stable so equal scores keep their concatenation order.
//
// Raw scores are comparable across collections only because every collection
// is embedded with the same model under the same cosine metric. Do not
// renormalize here; the ranking depends on that shared scale.
func Fuse(results []SearchResult, topK int) []SearchResult {
	fused := make([]SearchResult, len(results))
	copy(fused, results)

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	limit := 2 * topK
	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
