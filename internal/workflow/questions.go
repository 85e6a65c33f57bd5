package workflow

import (
	"math"
	"strconv"
	"strings"
)

// CoerceQuestions turns user input into a question count. Anything that is
// not a finite number yields def; there is no range check.
func CoerceQuestions(value string, def int) int {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return def
}
