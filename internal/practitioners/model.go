package practitioners

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Practitioner is a health professional that can be booked.
type Practitioner struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Specialty string              `json:"specialty"`
	Address   string              `json:"address"`
	Contact   string              `json:"contact"`
	Price     decimal.NullDecimal `json:"consultation_price"`
	Active    bool                `json:"active"`
	CreatedAt time.Time           `json:"created_at"`
}

// CreateRequest is the body for POST /practitioners.
type CreateRequest struct {
	Name      string              `json:"name"`
	Specialty string              `json:"specialty"`
	Address   string              `json:"address"`
	Contact   string              `json:"contact"`
	Price     decimal.NullDecimal `json:"consultation_price"`
}

// Validate checks required fields. A missing price is allowed here; bookings
// against such a practitioner fail until one is configured.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Specialty) == "" {
		return ErrInvalidSpecialty
	}
	if r.Price.Valid && r.Price.Decimal.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// UpdateRequest is the body for PATCH /practitioners/{id}; nil fields are left untouched.
type UpdateRequest struct {
	Name      *string              `json:"name"`
	Specialty *string              `json:"specialty"`
	Address   *string              `json:"address"`
	Contact   *string              `json:"contact"`
	Price     *decimal.NullDecimal `json:"consultation_price"`
}

// Apply copies the set fields onto p.
func (r *UpdateRequest) Apply(p *Practitioner) error {
	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			return ErrInvalidName
		}
		p.Name = *r.Name
	}
	if r.Specialty != nil {
		if strings.TrimSpace(*r.Specialty) == "" {
			return ErrInvalidSpecialty
		}
		p.Specialty = *r.Specialty
	}
	if r.Address != nil {
		p.Address = *r.Address
	}
	if r.Contact != nil {
		p.Contact = *r.Contact
	}
	if r.Price != nil {
		if r.Price.Valid && r.Price.Decimal.IsNegative() {
			return ErrInvalidPrice
		}
		p.Price = *r.Price
	}
	return nil
}
