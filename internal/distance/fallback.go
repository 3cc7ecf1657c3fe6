package distance

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePostalCode strips whitespace and an optional "D-" prefix.
func NormalizePostalCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.TrimPrefix(code, "D-")
	return strings.ReplaceAll(code, " ", "")
}

// Fallback estimates the road distance between two German postal codes from
// their numeric values. Codes sharing a leading digit lie in the same postal
// region and are bucketed by numeric difference; otherwise the difference of
// leading digits picks the bucket.
func Fallback(from, to string) (Result, error) {
	from = NormalizePostalCode(from)
	to = NormalizePostalCode(to)

	fromNum, err := parsePostalCode(from)
	if err != nil {
		return Result{}, err
	}
	toNum, err := parsePostalCode(to)
	if err != nil {
		return Result{}, err
	}

	km := fallbackKm(from, to, fromNum, toNum)
	return Result{
		DistanceKm:      km,
		DurationMinutes: km * 1.5,
		Success:         false,
		Fallback:        true,
		Source:          SourceFallback,
	}, nil
}

func fallbackKm(from, to string, fromNum, toNum int) float64 {
	if from == to {
		return 0
	}

	if from[0] == to[0] {
		diff := abs(fromNum - toNum)
		switch {
		case diff < 50:
			return 10
		case diff < 200:
			return 25
		case diff < 500:
			return 45
		default:
			return 80
		}
	}

	switch abs(int(from[0]) - int(to[0])) {
	case 1:
		return 120
	case 2:
		return 200
	case 3, 4:
		return 350
	default:
		return 500
	}
}

func parsePostalCode(code string) (int, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: empty postal code", ErrInvalidPostalCode)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPostalCode, code)
		}
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPostalCode, code)
	}
	return n, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
