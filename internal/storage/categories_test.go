package storage

import "testing"

func TestDefaultCpdCategories(t *testing.T) {
	categories := DefaultCpdCategories()
	if len(categories) != 4 {
		t.Fatalf("len = %d, want 4 categories", len(categories))
	}

	total := 0
	for _, category := range categories {
		total += category.RequiredPoints
	}
	if total != 50 {
		t.Fatalf("total required points = %d, want 50", total)
	}
}

func TestCpdCategoryByID(t *testing.T) {
	category, ok := CpdCategoryByID(2)
	if !ok {
		t.Fatal("expected category 2 to exist")
	}
	if category.Name != "Ethics & Professional Conduct" || category.RequiredPoints != 10 {
		t.Fatalf("unexpected category: %+v", category)
	}

	if _, ok := CpdCategoryByID(99); ok {
		t.Fatal("expected unknown category to be rejected")
	}
}
