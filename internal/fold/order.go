package fold

import (
	"slices"
	"strings"

	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortListing orders directories before files and names by the collation
// rules of tag. Names equal under collation fall back to byte order, so the
// result is a strict function of the names.
func sortListing(entries []fsutil.Entry, tag language.Tag) {
	// Collators keep scratch buffers; one per call.
	c := collate.New(tag)
	slices.SortFunc(entries, func(a, b fsutil.Entry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		if r := c.CompareString(a.Name, b.Name); r != 0 {
			return r
		}
		return strings.Compare(a.Name, b.Name)
	})
}
