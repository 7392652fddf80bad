package filter

import "github.com/aihavenlabs/pathwei-admin/pkg/types"

// ForCollection returns the filter schema of a standard collection with the
// given default page size.
func ForCollection(name string, defaultLimit int) (*Schema, bool) {
	if defaultLimit < 1 {
		defaultLimit = types.DefaultPageLimit
	}
	page := []Field{Number(KeyPage, 1), Number(KeyLimit, float64(defaultLimit))}
	switch name {
	case types.CollectionUsers:
		return NewSchema(append(page,
			String(types.FilterSearch, ""),
			String(types.FilterRole, ""),
			String(types.FilterLocale, ""),
			String(types.FilterActive, ""),
		)...), true
	case types.CollectionSubscribers:
		return NewSchema(append(page,
			String(types.FilterSearch, ""),
			String(types.FilterLocale, ""),
			String(types.FilterSource, ""),
			String(types.FilterSubscribed, ""),
		)...), true
	case types.CollectionExperiments:
		return NewSchema(append(page,
			String(types.FilterSearch, ""),
			String(types.FilterName, ""),
			String(types.FilterVariant, ""),
			String(types.FilterLocale, ""),
			Number(types.FilterMinViews, 0),
		)...), true
	default:
		return nil, false
	}
}
