package service

import "github.com/amccague/zscore/internal/models"

// Aggregate returns the ceiling of the mean score/max ratio as a percentage.
// Every case carries equal weight. Integer arithmetic keeps a perfect run at
// exactly 100.
func Aggregate(results []models.CaseResult) int {
	if len(results) == 0 {
		return 0
	}

	l := int64(1)
	for _, r := range results {
		if r.MaxScore > 0 {
			l = lcm(l, int64(r.MaxScore))
		}
	}

	var num int64
	for _, r := range results {
		if r.MaxScore <= 0 {
			continue
		}
		num += int64(clamp(r.Score, 0, r.MaxScore)) * (l / int64(r.MaxScore))
	}

	num *= 100
	den := l * int64(len(results))
	return clamp(int((num+den-1)/den), 0, 100)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
