package listing

import (
	"gitlab.connectwisedev.com/product-listing-service/models"
)

// Assemble builds the result envelope from store rows and the filtered
// total. Page and limit echo the validated descriptor verbatim; an absent
// row set becomes an empty slice so the envelope always serializes as a
// list.
func Assemble(rows []models.Product, totalCount int, q *Query) *models.ProductPage {
	if rows == nil {
		rows = []models.Product{}
	}
	if totalCount < 0 {
		totalCount = 0
	}
	return &models.ProductPage{
		Data:       rows,
		TotalCount: totalCount,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}
