// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// CatalogPath is the location of the bundled ETF universe inside Files
const CatalogPath = "catalog/etfs.yaml"

// Files contains all files embedded in the Go binary:
// - catalog/etfs.yaml - the default ETF universe (ticker, stages, themes, tiers)
//
//go:embed catalog
var Files embed.FS

// Catalog returns the raw bytes of the bundled ETF catalog
func Catalog() ([]byte, error) {
	return Files.ReadFile(CatalogPath)
}
