package domain

// Filter scopes a list query. An empty OwnerID means every owner; a zero
// Limit means no limit.
type Filter struct {
	OwnerID string
	Limit   int
}

// Owned returns a filter scoped to ownerID.
func Owned(ownerID string) Filter {
	return Filter{OwnerID: ownerID}
}
