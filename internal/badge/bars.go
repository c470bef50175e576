package badge

import (
	"fmt"
	"strings"
)

// barMarkup emits numBar decorative bar elements for the equalizer strip.
func barMarkup(numBar int) string {
	return strings.Repeat("<div class='bar'></div>", numBar)
}

// generateBarCSS emits one positioning-and-animation rule per bar: a left
// offset stepping 4px from 1, and a random animation duration in [350,500]ms
// so adjacent bars drift out of phase.
func generateBarCSS(numBar int, intn func(n int) int) string {
	var sb strings.Builder

	left := 1
	for i := 1; i <= numBar; i++ {
		duration := 350 + intn(151)
		fmt.Fprintf(&sb, ".bar:nth-child(%d)  { left: %dpx; animation-duration: %dms; }", i, left, duration)
		left += 4
	}

	return sb.String()
}
