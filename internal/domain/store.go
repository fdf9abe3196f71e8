package domain

// CatalogStore handles the local snapshot cache (BoltDB + memory).
// The catalog engine seeds itself from it on startup and overwrites it
// after every successful refresh.
type CatalogStore interface {
	GetCatalog() (CatalogSnapshot, bool)
	SaveCatalog(snap CatalogSnapshot) error

	// InvalidateCatalog drops the snapshot after a mutation
	InvalidateCatalog()

	// InvalidateAll wipes the whole cache
	InvalidateAll()

	Close() error
}
