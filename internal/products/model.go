package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the persisted entity. A nil ID means the row has not been
// written yet; once storage assigns an ID it never changes.
type Product struct {
	ID          *int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Persisted reports whether storage has assigned an identifier.
func (p Product) Persisted() bool {
	return p.ID != nil
}
