package policy

// levenshteinDistance over runes, two-row DP.
func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// similarity is the normalized edit-distance similarity in [0, 1]:
// (len(longer) - distance) / len(longer).
func similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longer := max(la, lb)
	if longer == 0 {
		return 1
	}

	return float64(longer-levenshteinDistance(a, b)) / float64(longer)
}
