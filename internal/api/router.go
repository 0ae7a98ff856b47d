package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
//
// Mutating endpoints also accept GET where the original clients used it;
// the query-parameter contract is part of the surface, not an accident.
func NewRouter(repo *fleet.Repository, sseHandler http.Handler) chi.Router {
	h := NewHandler(repo)

	r := chi.NewRouter()

	r.Route("/cars", func(r chi.Router) {
		r.Get("/all", h.ListVehicles)
		r.Get("/available", h.ListAvailable)
		r.Get("/show", h.ShowVehicle)
		r.Get("/search", h.SearchVehicles)

		r.Get("/add", h.AddVehicle)
		r.Post("/add", h.AddVehicle)
		r.Post("/bulk-add", h.BulkAddVehicles)

		r.Get("/edit", h.EditVehicle)
		r.Post("/edit", h.EditVehicle)
		r.Put("/edit", h.EditVehicle)
		r.Post("/batch-edit", h.BatchEditVehicles)
		r.Put("/batch-edit", h.BatchEditVehicles)

		r.Get("/remove", h.RemoveVehicle)
		r.Post("/remove", h.RemoveVehicle)
		r.Post("/remove-batch", h.RemoveVehicles)

		r.Get("/rent", h.RentVehicle)
		r.Put("/rent", h.RentVehicle)
		r.Get("/return", h.ReturnVehicle)
		r.Put("/return", h.ReturnVehicle)

		r.Get("/branch", h.Branches)
		r.Get("/branch-list", h.BranchList)
		r.Get("/category", h.Categories)
		r.Get("/category-list", h.CategoryList)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/fleet", h.FleetReport)
		r.Get("/branch", h.BranchReport)
		r.Get("/rentals", h.RentalReport)
		r.Get("/rental-utilisation-by-branch", h.BranchUtilization)
		r.Get("/status-by-branch", h.StatusByBranch)
		r.Get("/category-by-branch", h.CategoryByBranch)
		r.Get("/rented-by-category", h.RentedByCategory)
		r.Get("/issues-percentage", h.IssuesPercentage)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/all", h.ListCustomers)
		r.Get("/show", h.ShowCustomer)
		r.Get("/search", h.SearchCustomers)
		r.Get("/add", h.AddCustomer)
		r.Post("/add", h.AddCustomer)
		r.Get("/update", h.UpdateCustomer)
		r.Post("/update", h.UpdateCustomer)
		r.Get("/remove", h.RemoveCustomer)
		r.Post("/remove", h.RemoveCustomer)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
