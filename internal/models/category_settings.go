package models

// CategorySettings is the per-branch override set persisted at
// /api/branch-category-settings/:branch. DeletedCategories holds lower-cased names.
type CategorySettings struct {
	AddedCategories   []string `json:"addedCategories"`
	DeletedCategories []string `json:"deletedCategories"`
}

func (s CategorySettings) Clone() CategorySettings {
	return CategorySettings{
		AddedCategories:   append([]string{}, s.AddedCategories...),
		DeletedCategories: append([]string{}, s.DeletedCategories...),
	}
}
