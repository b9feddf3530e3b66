package products

import "time"

// Mapper functions for converting between layers:
// ProductRequest → ProductDTO → Product (storage)
// Product → ProductDTO → ProductResponse (wire)

// priceScale matches the NUMERIC(12,2) price column.
const priceScale = 2

// EntityFromDTO maps a transfer object to the persisted entity. The price is
// rounded to the column scale so every storage driver keeps the same value.
func EntityFromDTO(d ProductDTO) Product {
	return Product{
		ID:          copyID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price.Round(priceScale),
		Quantity:    d.Quantity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// DTOFromEntity maps a persisted entity to a transfer object.
func DTOFromEntity(p Product) ProductDTO {
	return ProductDTO{
		ID:          copyID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// DTOFromRequest maps the wire request to a transfer object, rounding the
// price so the echoed response matches what storage keeps.
func DTOFromRequest(r ProductRequest) ProductDTO {
	return ProductDTO{
		ID:          copyID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Round(priceScale),
		Quantity:    r.Quantity,
	}
}

// ResponseFromDTO maps a transfer object to the wire response. Callers only
// pass persisted records, a nil ID renders as 0.
func ResponseFromDTO(d ProductDTO) ProductResponse {
	resp := ProductResponse{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		CreatedAt:   timePtr(d.CreatedAt),
		UpdatedAt:   timePtr(d.UpdatedAt),
	}
	if d.ID != nil {
		resp.ID = *d.ID
	}
	return resp
}

// ResponsesFromDTOs maps a list, never returning nil so empty lists encode as [].
func ResponsesFromDTOs(items []ProductDTO) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ResponseFromDTO(item))
	}
	return out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
