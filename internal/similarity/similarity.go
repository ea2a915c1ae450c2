// Package similarity scores how alike two normalized names are.
package similarity

import "math"

// Ratio returns the similarity of a and b on a 0-100 scale.
//
// The score is the normalized indel distance: insertions and deletions cost 1,
// substitutions cost 2 (a delete plus an insert), and
//
//	ratio = 100 * (len(a)+len(b) - distance) / (len(a)+len(b))
//
// rounded to the nearest integer. Two empty strings are identical (100).
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := indelDistance(ra, rb)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// indelDistance calculates the edit distance between a and b without a
// substitution operation. Two rows of the matrix are kept.
func indelDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = min(
				prev[j]+1,   // deletion
				curr[j-1]+1, // insertion
				prev[j-1]+2, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
