package models

// Customer statuses.
const (
	CustomerActive   = "ACTIVE"
	CustomerInactive = "INACTIVE"
)

// CustomerColumns is the canonical column order for the customer table.
var CustomerColumns = []string{
	"id", "name", "email", "phone", "license", "status", "rentals",
}

// Customer is a roster record. The id is the unique business key.
// Rentals is a stored counter; no operation in this service increments it.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	License string `json:"license"`
	Status  string `json:"status"`
	Rentals string `json:"rentals"`
}

// Record maps the customer onto its column names for persistence.
func (c Customer) Record() map[string]string {
	return map[string]string{
		"id":      c.ID,
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"license": c.License,
		"status":  c.Status,
		"rentals": c.Rentals,
	}
}

// CustomerFromRecord builds a Customer from a persisted row.
func CustomerFromRecord(rec map[string]string) Customer {
	return Customer{
		ID:      rec["id"],
		Name:    rec["name"],
		Email:   rec["email"],
		Phone:   rec["phone"],
		License: rec["license"],
		Status:  rec["status"],
		Rentals: rec["rentals"],
	}
}
