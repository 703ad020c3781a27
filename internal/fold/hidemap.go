package fold

import (
	"slices"
	"strings"

	"github.com/kk-code-lab/rfold/internal/rules"
)

// BuildHideMap returns one item per (file, rule) pair where the file name ends
// with the rule's trigger, in file order then rule order. Names that match
// several triggers yield several items; no longest-suffix resolution is done.
// Items come back unresolved; see Resolve.
func BuildHideMap(files []string, set *rules.Set) []HideMapItem {
	var items []HideMapItem
	for _, name := range files {
		for i := 0; i < set.Len(); i++ {
			r := set.Rule(i)
			if !strings.HasSuffix(name, r.Trigger) {
				continue
			}
			items = append(items, HideMapItem{
				Base:    strings.TrimSuffix(name, r.Trigger),
				Trigger: r.Trigger,
				Hidden:  slices.Clone(r.Hidden),
			})
		}
	}
	return items
}

// Resolve sets NonEmpty on every item against the given sibling names.
func Resolve(items []HideMapItem, names map[string]bool) {
	for i := range items {
		items[i].NonEmpty = false
		for _, s := range items[i].Hidden {
			if names[items[i].Base+s] {
				items[i].NonEmpty = true
				break
			}
		}
	}
}
