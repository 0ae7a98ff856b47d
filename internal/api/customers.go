package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

// ListCustomers handles GET /customers/all.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.repo.Customers()
	writeJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// ShowCustomer handles GET /customers/show?id=.
func (h *Handler) ShowCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	c, err := h.repo.CustomerByID(id)
	if err != nil {
		writeError(w, "show customer", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func customerFromQuery(q url.Values) models.Customer {
	return models.Customer{
		ID:      q.Get("id"),
		Name:    q.Get("name"),
		Email:   q.Get("email"),
		Phone:   q.Get("phone"),
		License: q.Get("license"),
		Status:  q.Get("status"),
		Rentals: q.Get("rentals"),
	}
}

// AddCustomer handles GET|POST /customers/add.
func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.AddCustomer(customerFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, "add customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "customer added",
		"customer": c,
	})
}

// UpdateCustomer handles GET|POST /customers/update?id=&field=value.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	updates := map[string]string{}
	for field, values := range q {
		if field == "id" || len(values) == 0 {
			continue
		}
		updates[field] = values[0]
	}
	c, err := h.repo.UpdateCustomer(id, updates)
	if err != nil {
		writeError(w, "update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "customer updated",
		"customer": c,
	})
}

// RemoveCustomer handles GET|POST /customers/remove?id=.
func (h *Handler) RemoveCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.repo.RemoveCustomer(id); err != nil {
		writeError(w, "remove customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "customer removed",
		"id":      id,
	})
}

// SearchCustomers handles GET /customers/search?query=&limit=.
func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := fleet.CustomerFilter{Query: q.Get("query")}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		f.Limit = limit
	}
	writeJSON(w, http.StatusOK, fleet.SearchCustomers(h.repo.Customers(), f))
}
