package memory

import (
	"context"
	"slices"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// PhoneSampleData seeds the catalog
var PhoneSampleData = []models.Mobile{
	models.NewMobile("iPhone", "15Pro Max", models.Dollars(1200, 0)),
	models.NewMobile("Samsung", "Ultra24", models.Dollars(1600, 0)),
}

// InMemoryCatalog is a read-only phone catalog
type InMemoryCatalog struct {
	phones []models.Mobile
}

// NewInMemoryCatalog creates a catalog holding a copy of phones
func NewInMemoryCatalog(phones []models.Mobile) *InMemoryCatalog {
	return &InMemoryCatalog{phones: slices.Clone(phones)}
}

var _ ports.CatalogRepository = (*InMemoryCatalog)(nil)

func (c *InMemoryCatalog) ListPhones(ctx context.Context) ([]models.Mobile, error) {
	return slices.Clone(c.phones), nil
}
