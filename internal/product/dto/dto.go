package dto

type ProductFilters struct {
	LowStock  bool   // Only products below their minimum stock level
	SortBy    string // name, quantity, created_at
	SortOrder string // asc, desc
	Page      int
	PageSize  int
}
