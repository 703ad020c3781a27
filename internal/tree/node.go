package tree

import (
	"slices"
	"strings"

	"github.com/kk-code-lab/rfold/internal/fold"
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
)

// State is the expansion state of a node.
type State uint8

const (
	Leaf State = iota
	Collapsed
	Expanded
)

func (s State) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	default:
		return "leaf"
	}
}

// Icons used by DisplayNode.
const (
	IconFile      = " "
	IconDirectory = "/"
	IconSymlink   = "@"
	IconContainer = "+"
)

// Node is the presentation of one entry.
type Node struct {
	Label   string
	Icon    string
	State   State
	Tooltip string
	Path    string
	Hidden  bool
}

// DisplayNode describes how e renders. Directories and expandable containers
// are collapsible; everything else is a leaf.
func (t *Tree) DisplayNode(e fold.Entry, expanded bool) Node {
	n := Node{
		Label:   e.Name,
		Icon:    IconFile,
		Tooltip: e.Path,
		Path:    e.Path,
		Hidden:  fsutil.IsHidden(e.Name),
	}

	switch {
	case e.IsDir():
		n.Icon = IconDirectory
		if e.IsSymlink {
			n.Icon = IconSymlink
		}
	case e.Expandable():
		n.Icon = IconContainer
		n.Tooltip = e.Path + " (folds " + strings.Join(foldedSuffixes(e), ", ") + ")"
	case e.IsSymlink:
		n.Icon = IconSymlink
	}

	if e.IsDir() || e.Expandable() {
		n.State = Collapsed
		if expanded {
			n.State = Expanded
		}
	}
	return n
}

// foldedSuffixes lists the hidden suffixes of e's non-empty rules, each once.
func foldedSuffixes(e fold.Entry) []string {
	var out []string
	for _, it := range e.Items {
		if !it.NonEmpty {
			continue
		}
		for _, s := range it.Hidden {
			if !slices.Contains(out, "*"+s) {
				out = append(out, "*"+s)
			}
		}
	}
	return out
}
