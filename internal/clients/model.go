package clients

import (
	"net/mail"
	"strings"
	"time"
)

// Client is a patient that books consultations.
type Client struct {
	ID                string    `json:"id"`
	LegalID           string    `json:"legal_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Contact           string    `json:"contact"`
	Street            string    `json:"street"`
	Number            string    `json:"number"`
	Complement        string    `json:"complement"`
	District          string    `json:"district"`
	PostalCode        string    `json:"postal_code"`
	GatewayCustomerID *string   `json:"gateway_customer_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateRequest represents the request body for creating a client
type CreateRequest struct {
	LegalID    string `json:"legal_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
}

// Validate validates the request and normalizes the legal id in place.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	digits, err := ValidateLegalID(r.LegalID)
	if err != nil {
		return err
	}
	r.LegalID = digits
	return nil
}

func (r *CreateRequest) toClient(id string, createdAt time.Time) *Client {
	return &Client{
		ID:         id,
		LegalID:    r.LegalID,
		Name:       r.Name,
		Email:      strings.ToLower(strings.TrimSpace(r.Email)),
		Contact:    r.Contact,
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		District:   r.District,
		PostalCode: r.PostalCode,
		CreatedAt:  createdAt,
	}
}
