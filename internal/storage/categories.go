package storage

// DefaultCpdCategories is the fixed category catalog used for CPD summaries.
// Both adapters report earned points against these requirements.
func DefaultCpdCategories() []CpdCategory {
	return []CpdCategory{
		{ID: 1, Name: "Clinical Practice", RequiredPoints: 20},
		{ID: 2, Name: "Ethics & Professional Conduct", RequiredPoints: 10},
		{ID: 3, Name: "Research & Education", RequiredPoints: 15},
		{ID: 4, Name: "Leadership & Management", RequiredPoints: 5},
	}
}

// CpdCategoryByID resolves a category from the fixed catalog.
func CpdCategoryByID(id int64) (CpdCategory, bool) {
	for _, category := range DefaultCpdCategories() {
		if category.ID == id {
			return category, true
		}
	}
	return CpdCategory{}, false
}
