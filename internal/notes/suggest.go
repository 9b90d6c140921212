// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// suggestKey returns the known key closest to key, or "" if none is close.
// Subsequence matches ("ignore" -> "checkpatch-ignore") win over edit distance.
func suggestKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	matches := fuzzy.RankFindFold(key, knownKeys)
	if len(matches) > 0 {
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Distance < matches[j].Distance
		})
		return matches[0].Target
	}

	best, bestDist := "", -1
	for _, k := range knownKeys {
		dist := fuzzy.LevenshteinDistance(strings.ToLower(key), k)
		limit := len(k) / 3
		if dist <= limit && (bestDist == -1 || dist < bestDist) {
			best, bestDist = k, dist
		}
	}
	return best
}
