package modelversion

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted numeric version strings.
// Returns -1 if a < b, 0 if equal, 1 if a > b. Non-numeric segments
// compare as zero, so malformed versions degrade rather than panic.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}
