package products

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, e.g. {"price": 100}.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductDTO is passed between the handler, the service and storage.
type ProductDTO struct {
	ID          *int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductRequest is the body accepted by POST and PUT. ID is ignored on
// create and overridden by the path on update.
type ProductRequest struct {
	ID          *int64          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
}

// ProductResponse is the body returned for a single product.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}
