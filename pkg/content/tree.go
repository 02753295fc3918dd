package content

import "errors"

// SkipChildren returned from a WalkFunc skips the children of the current part
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each part; the root is at depth 1
type WalkFunc func(p *NestedPart, depth int) error

// Walk visits root and its descendants depth first, parents before children
func Walk(root *NestedPart, fn WalkFunc) error {
	return walk(root, 1, fn)
}

func walk(p *NestedPart, depth int, fn WalkFunc) error {
	if err := fn(p, depth); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	multi, ok := p.Content.(*MultiPart)
	if !ok || multi == nil {
		return nil
	}
	for i := range multi.Parts {
		if err := walk(&multi.Parts[i], depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Depth returns the number of levels in the tree rooted at p
func Depth(p NestedPart) int {
	deepest := 0
	Walk(&p, func(_ *NestedPart, depth int) error {
		deepest = max(deepest, depth)
		return nil
	})
	return deepest
}

// Count returns the number of parts in the tree rooted at p
func Count(p NestedPart) int {
	n := 0
	Walk(&p, func(*NestedPart, int) error {
		n++
		return nil
	})
	return n
}
