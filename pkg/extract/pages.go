package extract

import (
	"regexp"
	"sort"
	"strconv"
)

var pageIndexRE = regexp.MustCompile(`(?i)-(\d+)\.jpe?g$`)

// pageIndex recovers the page number embedded before the extension
// (e.g. "receipt-3.jpg" -> 3). Names without an index sort as 0.
func pageIndex(name string) int {
	m := pageIndexRE.FindStringSubmatch(name)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SortPages orders rendered page images ascending by their embedded page
// number, not lexically, so "r-10.jpg" follows "r-2.jpg". Stable across ties.
func SortPages(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.SliceStable(out, func(i, j int) bool {
		return pageIndex(out[i]) < pageIndex(out[j])
	})
	return out
}
