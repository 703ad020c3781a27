package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kk-code-lab/rfold/internal/fold"
	"github.com/kk-code-lab/rfold/internal/textutil"
)

// Row is one visible line of a flattened tree.
type Row struct {
	Entry fold.Entry
	Depth int
	Node  Node
}

// Flatten walks the tree depth-first and returns the visible rows. A node's
// children are included when expanded reports true for it. A container
// already open on the path above is not opened again, so hide-rule cycles
// cannot recurse forever.
//
// Failing to list the root is returned as is. Failures further down leave
// the affected subtree empty and are joined into the returned error together
// with any partial listings.
func (t *Tree) Flatten(ctx context.Context, expanded func(fold.Entry) bool) ([]Row, error) {
	top, err := t.Children(ctx, nil)
	if top == nil && err != nil {
		return nil, err
	}

	var (
		rows []Row
		errs []error
	)
	if err != nil {
		errs = append(errs, err)
	}

	open := make(map[string]bool)
	var walk func(entries []fold.Entry, depth int)
	walk = func(entries []fold.Entry, depth int) {
		for _, e := range entries {
			isOpen := (e.IsDir() || e.Expandable()) && !open[e.Path] && expanded(e)
			rows = append(rows, Row{Entry: e, Depth: depth, Node: t.DisplayNode(e, isOpen)})
			if !isOpen {
				continue
			}

			children, err := t.Children(ctx, &e)
			if err != nil {
				errs = append(errs, err)
			}
			open[e.Path] = true
			walk(children, depth+1)
			delete(open, e.Path)
		}
	}
	walk(top, 0)

	return rows, errors.Join(errs...)
}

// PrintOptions configures Fprint.
type PrintOptions struct {
	// Flat prints the root listing only.
	Flat bool
}

// Fprint writes the folded tree to w, one entry per line, children indented
// beneath their directory or container. Symlinked directories are not
// followed.
func (t *Tree) Fprint(ctx context.Context, w io.Writer, opts PrintOptions) error {
	rows, err := t.Flatten(ctx, func(e fold.Entry) bool {
		if opts.Flat {
			return false
		}
		return !(e.IsDir() && e.IsSymlink)
	})
	if rows == nil && err != nil {
		return err
	}

	for _, row := range rows {
		label := textutil.SanitizeTerminalText(row.Node.Label)
		switch {
		case row.Entry.IsDir():
			label += "/"
		case row.Entry.Expandable():
			label += " [" + strings.Join(foldedSuffixes(row.Entry), " ") + "]"
		}
		if _, werr := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", row.Depth), label); werr != nil {
			return werr
		}
	}
	return err
}
