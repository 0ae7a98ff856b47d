package api

import (
	"net/http"

	"github.com/moore-mac/vehicle-rental-manager/internal/analytics"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

// FleetReport handles GET /analytics/fleet.
func (h *Handler) FleetReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.Fleet(h.repo.Vehicles()))
}

// BranchReport handles GET /analytics/branch?name=.
func (h *Handler) BranchReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	rep, err := analytics.Branch(h.repo.Vehicles(), name)
	if err != nil {
		writeError(w, "branch report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// RentalReport handles GET /analytics/rentals.
func (h *Handler) RentalReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.Rentals(h.repo.Vehicles()))
}

// branchParam requires the branch query parameter shared by the per-branch
// breakdowns. A missing branch is a validation error; an unknown branch is
// not (the breakdown is simply empty).
func branchParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("branch is required"))
		return "", false
	}
	return branch, true
}

// BranchUtilization handles GET /analytics/rental-utilisation-by-branch.
func (h *Handler) BranchUtilization(w http.ResponseWriter, r *http.Request) {
	branch, ok := branchParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Utilization(h.repo.Vehicles(), branch))
}

// StatusByBranch handles GET /analytics/status-by-branch.
func (h *Handler) StatusByBranch(w http.ResponseWriter, r *http.Request) {
	h.branchBreakdown(w, r, "statuses", analytics.StatusByBranch)
}

// CategoryByBranch handles GET /analytics/category-by-branch.
func (h *Handler) CategoryByBranch(w http.ResponseWriter, r *http.Request) {
	h.branchBreakdown(w, r, "categories", analytics.CategoryByBranch)
}

// RentedByCategory handles GET /analytics/rented-by-category.
func (h *Handler) RentedByCategory(w http.ResponseWriter, r *http.Request) {
	h.branchBreakdown(w, r, "rented", analytics.RentedByCategory)
}

func (h *Handler) branchBreakdown(w http.ResponseWriter, r *http.Request, key string, fn func([]models.Vehicle, string) map[string]int) {
	branch, ok := branchParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"branch": branch,
		key:      fn(h.repo.Vehicles(), branch),
	})
}

// IssuesPercentage handles GET /analytics/issues-percentage.
func (h *Handler) IssuesPercentage(w http.ResponseWriter, r *http.Request) {
	branch, ok := branchParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Issues(h.repo.Vehicles(), branch))
}
