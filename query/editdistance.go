package query

// damerauLevenshtein computes the Damerau-Levenshtein edit distance between
// a and b, capped at maxDistance (returns maxDistance+1 once exceeded).
// Adapted from the teacher repository's internal/typoutil.CalculateEditDistance:
// same three-row rolling DP with adjacent-transposition support and early
// termination, used here to score a candidate word's exact typo distance
// from the query term for the Typo criterion (the automaton only bounds the
// distance, it doesn't report the exact value).
func damerauLevenshtein(a, b string, maxDistance int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return min2(lb, maxDistance+1)
	}
	if lb == 0 {
		return min2(la, maxDistance+1)
	}
	if abs(la-lb) > maxDistance {
		return maxDistance + 1
	}

	prev2 := make([]int, lb+1)
	prev1 := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev1[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			val := min3(
				prev1[j]+1,
				curr[j-1]+1,
				prev1[j-1]+cost,
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				val = min2(val, prev2[j-2]+1)
			}
			curr[j] = val
			if val < rowMin {
				rowMin = val
			}
		}
		if rowMin > maxDistance {
			return maxDistance + 1
		}
		prev2, prev1, curr = prev1, curr, prev2
	}
	return min2(prev1[lb], maxDistance+1)
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int { return min2(a, min2(b, c)) }

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
