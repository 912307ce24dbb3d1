package guideline

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildTree turns a flat batch of guideline details into a forest. A node
// whose parent is not part of the same batch is promoted to a root, so a
// child can surface as a root in a filtered view even when a real parent
// exists outside the batch. Siblings at every level are ordered by title
// using locale-aware comparison.
func BuildTree(details []Detail) []*Node {
	nodes := make(map[uint]*Node, len(details))
	ordered := make([]*Node, 0, len(details))
	for _, detail := range details {
		node := newNode(detail)
		nodes[node.GuidelineID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*Node, 0, len(ordered))
	for _, node := range ordered {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	collator := collate.New(language.Und)
	sortForest(collator, roots)
	return roots
}

func sortForest(collator *collate.Collator, nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return collator.CompareString(nodes[i].Title, nodes[j].Title) < 0
	})
	for _, node := range nodes {
		sortForest(collator, node.Children)
	}
}
