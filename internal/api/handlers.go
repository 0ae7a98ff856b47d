package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

// Handler holds the API route handlers over the fleet repository.
type Handler struct {
	repo *fleet.Repository
}

// NewHandler creates a new Handler.
func NewHandler(repo *fleet.Repository) *Handler {
	return &Handler{repo: repo}
}

// reg extracts the vehicle registration from the query, accepting both the
// reg and vrm parameter names.
func reg(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("reg"); v != "" {
		return v
	}
	return q.Get("vrm")
}

// ListVehicles handles GET /cars/all.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := h.repo.Vehicles()
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// ListAvailable handles GET /cars/available.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	vehicles := h.repo.AvailableVehicles()
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// ShowVehicle handles GET /cars/show?reg=.
func (h *Handler) ShowVehicle(w http.ResponseWriter, r *http.Request) {
	vrm := reg(r)
	if vrm == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("reg is required"))
		return
	}
	v, err := h.repo.VehicleByVRM(vrm)
	if err != nil {
		writeError(w, "show vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// vehicleFromQuery builds a vehicle record from query parameters, one per
// column. Unknown parameters are ignored.
func vehicleFromQuery(q url.Values) models.Vehicle {
	v := models.Vehicle{
		ID:          q.Get("id"),
		Make:        q.Get("make"),
		Model:       q.Get("model"),
		Colour:      q.Get("colour"),
		VIN:         q.Get("vin"),
		Year:        q.Get("year"),
		VRM:         q.Get("vrm"),
		Category:    q.Get("category"),
		NumberSeats: q.Get("numberSeats"),
		DayRate:     q.Get("dayRate"),
		Status:      q.Get("status"),
		FuelEconomy: q.Get("fuelEconomy"),
		Branch:      q.Get("branch"),
	}
	if v.VRM == "" {
		v.VRM = q.Get("reg")
	}
	return v
}

// AddVehicle handles GET|POST /cars/add. Fields arrive as query parameters,
// matching the original client contract.
func (h *Handler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.repo.AddVehicle(vehicleFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, "add vehicle", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "vehicle added",
		"vehicle": v,
	})
}

// BulkAddVehicles handles POST /cars/bulk-add with a JSON array body.
func (h *Handler) BulkAddVehicles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var items []models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("no vehicles provided"))
		return
	}
	res, err := h.repo.BulkAddVehicles(items)
	if err != nil {
		writeError(w, "bulk add vehicles", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// EditVehicle handles GET|POST|PUT /cars/edit?reg=&field=value. Every query
// parameter except reg is treated as a candidate update; the repository
// whitelist decides which apply.
func (h *Handler) EditVehicle(w http.ResponseWriter, r *http.Request) {
	vrm := reg(r)
	updates := map[string]string{}
	for field, values := range r.URL.Query() {
		if field == "reg" || field == "vrm" || len(values) == 0 {
			continue
		}
		updates[field] = values[0]
	}
	v, err := h.repo.EditVehicle(vrm, updates)
	if err != nil {
		writeError(w, "edit vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "vehicle updated",
		"vehicle": v,
	})
}

// BatchEditVehicles handles POST|PUT /cars/batch-edit with a JSON array of
// {reg, updates} items.
func (h *Handler) BatchEditVehicles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var items []fleet.BatchEditItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("no edits provided"))
		return
	}
	res, err := h.repo.BatchEditVehicles(items)
	if err != nil {
		writeError(w, "batch edit vehicles", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemoveVehicle handles GET|POST /cars/remove?reg=.
func (h *Handler) RemoveVehicle(w http.ResponseWriter, r *http.Request) {
	vrm := reg(r)
	if vrm == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("reg is required"))
		return
	}
	if err := h.repo.RemoveVehicle(vrm); err != nil {
		writeError(w, "remove vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "vehicle removed",
		"reg":     vrm,
	})
}

// RemoveBatchRequest is the body of POST /cars/remove-batch.
type RemoveBatchRequest struct {
	Regs []string `json:"regs"`
}

// RemoveVehicles handles POST /cars/remove-batch.
func (h *Handler) RemoveVehicles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RemoveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Regs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("regs is required"))
		return
	}
	res, err := h.repo.RemoveVehicles(req.Regs)
	if err != nil {
		writeError(w, "remove vehicles", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RentVehicle handles GET|PUT /cars/rent?reg=.
func (h *Handler) RentVehicle(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "vehicle rented", h.repo.Rent)
}

// ReturnVehicle handles GET|PUT /cars/return?reg=.
func (h *Handler) ReturnVehicle(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "vehicle returned", h.repo.Return)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, msg string, op func(string) (models.Vehicle, error)) {
	vrm := reg(r)
	if vrm == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("reg is required"))
		return
	}
	v, err := op(vrm)
	if err != nil {
		writeError(w, "set vehicle status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"vehicle": v,
	})
}

// SearchVehicles handles GET /cars/search.
func (h *Handler) SearchVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := fleet.VehicleFilter{
		Query:    q.Get("query"),
		Branch:   q.Get("branch"),
		Status:   strings.ToUpper(q.Get("status")),
		Category: q.Get("category"),
	}
	if raw := q.Get("max_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("max_price must be a number"))
			return
		}
		f.MaxPrice = &price
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		f.Limit = limit
	}
	writeJSON(w, http.StatusOK, fleet.SearchVehicles(h.repo.Vehicles(), f))
}

// Branches handles GET /cars/branch. Without a name parameter it returns
// the fleet grouped by branch; with one, that branch's vehicles.
func (h *Handler) Branches(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusOK, h.repo.VehiclesByBranch())
		return
	}
	vehicles := h.repo.VehiclesInBranch(name)
	writeJSON(w, http.StatusOK, map[string]any{
		"branch":   name,
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// BranchList handles GET /cars/branch-list.
func (h *Handler) BranchList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"branches": h.repo.BranchList()})
}

// Categories handles GET /cars/category.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.VehiclesByCategory())
}

// CategoryList handles GET /cars/category-list.
func (h *Handler) CategoryList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.repo.CategoryList()})
}
