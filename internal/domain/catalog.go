package domain

// CatalogKind names one of the read-only reference tables.
type CatalogKind string

// Reference tables.
const (
	CatalogRoles       CatalogKind = "roles"
	CatalogSubjects    CatalogKind = "subjects"
	CatalogDepartments CatalogKind = "departments"
	CatalogStatuses    CatalogKind = "statuses"
)

// Valid reports whether k names a known catalog.
func (k CatalogKind) Valid() bool {
	switch k {
	case CatalogRoles, CatalogSubjects, CatalogDepartments, CatalogStatuses:
		return true
	}
	return false
}

// CatalogEntry is one row of a reference table.
type CatalogEntry struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
