package types

// SortOrder is the direction used when listing records by creation time.
type SortOrder string

const (
	SortOrderDesc SortOrder = "desc"
	SortOrderAsc  SortOrder = "asc"
)

// Normalize treats any unknown value as SortOrderDesc.
func (o SortOrder) Normalize() SortOrder {
	if o == SortOrderAsc {
		return SortOrderAsc
	}
	return SortOrderDesc
}
