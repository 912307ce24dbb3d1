package guideline

import "testing"

func detailWith(id uint, title string, parentID *uint, status Status) Detail {
	return Detail{
		Guideline: Guideline{
			ID:       id,
			FamilyID: 1,
			Type:     TypeValue,
			Title:    title,
			ParentID: parentID,
			Status:   status,
		},
	}
}

func uintPtr(value uint) *uint {
	return &value
}

func TestBuildTreeNestsChildrenUnderParents(t *testing.T) {
	details := []Detail{
		detailWith(1, "Honesty", nil, StatusActive),
		detailWith(2, "Tell the truth", uintPtr(1), StatusActive),
		detailWith(3, "Admit mistakes", uintPtr(1), StatusActive),
	}

	roots := BuildTree(details)
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := roots[0]
	if root.GuidelineID != 1 {
		t.Fatalf("expected root 1, got %d", root.GuidelineID)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
}

func TestBuildTreePromotesOrphansToRoots(t *testing.T) {
	// Parent 99 is not part of the batch, so its child surfaces as a root.
	details := []Detail{
		detailWith(1, "Kindness", nil, StatusActive),
		detailWith(2, "Say thank you", uintPtr(99), StatusActive),
	}

	roots := BuildTree(details)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
}

func TestBuildTreeSortsSiblingsByTitle(t *testing.T) {
	details := []Detail{
		detailWith(1, "Zebra", nil, StatusActive),
		detailWith(2, "apple", nil, StatusActive),
		detailWith(3, "Mango", nil, StatusActive),
	}

	roots := BuildTree(details)
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}
	want := []string{"apple", "Mango", "Zebra"}
	for i, title := range want {
		if roots[i].Title != title {
			t.Fatalf("expected root %d to be %q, got %q", i, title, roots[i].Title)
		}
	}
}

func TestBuildTreeSortsChildLevels(t *testing.T) {
	details := []Detail{
		detailWith(1, "Chores", nil, StatusActive),
		detailWith(2, "Walk the dog", uintPtr(1), StatusActive),
		detailWith(3, "Dishes", uintPtr(1), StatusActive),
	}

	roots := BuildTree(details)
	children := roots[0].Children
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].Title != "Dishes" || children[1].Title != "Walk the dog" {
		t.Fatalf("unexpected child order: %q, %q", children[0].Title, children[1].Title)
	}
}

func TestBuildTreeEmptyInput(t *testing.T) {
	roots := BuildTree(nil)
	if roots == nil {
		t.Fatalf("expected non-nil empty forest")
	}
	if len(roots) != 0 {
		t.Fatalf("expected empty forest, got %d roots", len(roots))
	}
}

func TestBuildTreeNodesHaveNonNilChildSlices(t *testing.T) {
	roots := BuildTree([]Detail{detailWith(1, "Solo", nil, StatusActive)})
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if roots[0].Children == nil {
		t.Fatalf("expected non-nil children slice")
	}
	if roots[0].Approvals == nil {
		t.Fatalf("expected non-nil approvals slice")
	}
}
