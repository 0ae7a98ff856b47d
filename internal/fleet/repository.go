// Package fleet owns the in-memory vehicle and customer collections and
// their write-through persistence.
//
// The repository is the single owner of both collections. Every mutation
// rewrites the owning table synchronously before returning; there is no
// write batching and no rollback — a failed save leaves the in-memory state
// ahead of disk, surfaced to the caller as apperr.ErrUnavailable.
package fleet

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/moore-mac/vehicle-rental-manager/internal/apperr"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
	"github.com/moore-mac/vehicle-rental-manager/internal/storage"
)

// Table file names inside the data directory.
const (
	VehicleTable  = "vehicle.csv"
	CustomerTable = "customer.csv"
)

// Defaults applied by bulk add when the item omits the field.
const (
	DefaultBranch   = "Main Branch"
	DefaultCategory = "Standard"
)

// Batch item outcome values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Repository holds both collections and guards them with one mutex: chi
// serves requests concurrently, and collection state and file writes must
// not interleave.
type Repository struct {
	mu        sync.Mutex
	store     storage.Provider
	vehicles  []models.Vehicle
	customers []models.Customer
}

// NewRepository creates an empty repository over the given store.
// Call Load before serving requests.
func NewRepository(store storage.Provider) *Repository {
	return &Repository{store: store}
}

// Load reads both tables. A missing file yields an empty collection for
// either kind (fresh deployment); any other read error is a storage fault.
func (r *Repository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadVehiclesLocked(); err != nil {
		return err
	}
	return r.loadCustomersLocked()
}

// ReloadVehicles re-reads the vehicle table, replacing the in-memory
// collection. Used by the data-dir watcher after an external edit.
func (r *Repository) ReloadVehicles() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadVehiclesLocked()
}

// ReloadCustomers re-reads the customer table.
func (r *Repository) ReloadCustomers() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadCustomersLocked()
}

func (r *Repository) loadVehiclesLocked() error {
	rows, err := r.store.ReadAll(VehicleTable)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.vehicles = []models.Vehicle{}
			return nil
		}
		return fmt.Errorf("%w: load %s: %v", apperr.ErrUnavailable, VehicleTable, err)
	}
	vehicles := make([]models.Vehicle, 0, len(rows))
	for _, rec := range rows {
		vehicles = append(vehicles, models.VehicleFromRecord(rec))
	}
	r.vehicles = vehicles
	return nil
}

func (r *Repository) loadCustomersLocked() error {
	rows, err := r.store.ReadAll(CustomerTable)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.customers = []models.Customer{}
			return nil
		}
		return fmt.Errorf("%w: load %s: %v", apperr.ErrUnavailable, CustomerTable, err)
	}
	customers := make([]models.Customer, 0, len(rows))
	for _, rec := range rows {
		customers = append(customers, models.CustomerFromRecord(rec))
	}
	r.customers = customers
	return nil
}

// saveVehiclesLocked flushes the whole vehicle collection. An empty
// collection still writes a header-only file so a fleet emptied by removals
// stays empty across restarts.
func (r *Repository) saveVehiclesLocked() error {
	rows := make([]map[string]string, len(r.vehicles))
	for i, v := range r.vehicles {
		rows[i] = v.Record()
	}
	if err := r.store.WriteAll(VehicleTable, models.VehicleColumns, rows); err != nil {
		return fmt.Errorf("%w: save %s: %v", apperr.ErrUnavailable, VehicleTable, err)
	}
	return nil
}

func (r *Repository) saveCustomersLocked() error {
	rows := make([]map[string]string, len(r.customers))
	for i, c := range r.customers {
		rows[i] = c.Record()
	}
	if err := r.store.WriteAll(CustomerTable, models.CustomerColumns, rows); err != nil {
		return fmt.Errorf("%w: save %s: %v", apperr.ErrUnavailable, CustomerTable, err)
	}
	return nil
}

// Vehicles returns a snapshot copy of the vehicle collection in insertion
// order. Callers may not mutate repository state through it.
func (r *Repository) Vehicles() []models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Vehicle{}, r.vehicles...)
}

// Customers returns a snapshot copy of the customer collection.
func (r *Repository) Customers() []models.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Customer{}, r.customers...)
}

// VehicleByVRM looks up a vehicle by its registration mark.
func (r *Repository) VehicleByVRM(vrm string) (models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehicles {
		if v.VRM == vrm {
			return v, nil
		}
	}
	return models.Vehicle{}, fmt.Errorf("vehicle %q: %w", vrm, apperr.ErrNotFound)
}

// Rent marks the vehicle RENTED. The write is unconditional: renting an
// already-rented vehicle re-sets the same status and reports success.
func (r *Repository) Rent(vrm string) (models.Vehicle, error) {
	return r.setStatus(vrm, models.StatusRented)
}

// Return marks the vehicle AVAILABLE, with the same unconditional semantics
// as Rent.
func (r *Repository) Return(vrm string) (models.Vehicle, error) {
	return r.setStatus(vrm, models.StatusAvailable)
}

func (r *Repository) setStatus(vrm, status string) (models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.vehicles {
		if r.vehicles[i].VRM == vrm {
			r.vehicles[i].Status = status
			if err := r.saveVehiclesLocked(); err != nil {
				return models.Vehicle{}, err
			}
			return r.vehicles[i], nil
		}
	}
	return models.Vehicle{}, fmt.Errorf("vehicle %q: %w", vrm, apperr.ErrNotFound)
}

// AddVehicle appends a vehicle and persists. Status defaults to AVAILABLE
// and a uuid is generated when id is absent. Unlike BulkAddVehicles this
// path performs no duplicate-VRM check; the two operations deliberately
// offer different guarantees.
func (r *Repository) AddVehicle(v models.Vehicle) (models.Vehicle, error) {
	if v.VRM == "" {
		return models.Vehicle{}, fmt.Errorf("%w: vrm is required", apperr.ErrValidation)
	}
	if v.Status == "" {
		v.Status = models.StatusAvailable
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles = append(r.vehicles, v)
	if err := r.saveVehiclesLocked(); err != nil {
		return models.Vehicle{}, err
	}
	return v, nil
}

// BulkAddItemResult is the per-item outcome of a bulk add.
type BulkAddItemResult struct {
	VRM     string `json:"vrm"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BulkAddResult reports a bulk add: one entry per submitted item plus the
// number actually appended.
type BulkAddResult struct {
	Results    []BulkAddItemResult `json:"results"`
	AddedCount int                 `json:"added_count"`
}

func validateBulkVehicle(v models.Vehicle) error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.ID, validation.Required),
		validation.Field(&v.Make, validation.Required),
		validation.Field(&v.Model, validation.Required),
		validation.Field(&v.VRM, validation.Required),
	)
}

// BulkAddVehicles validates and appends each item independently: items with
// missing required fields or an already-present VRM are reported per item
// without aborting the rest. The table is saved once, and only when at
// least one item was appended.
func (r *Repository) BulkAddVehicles(items []models.Vehicle) (BulkAddResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := BulkAddResult{Results: make([]BulkAddItemResult, 0, len(items))}
	for _, item := range items {
		label := item.VRM
		if label == "" {
			label = "Unknown"
		}
		if err := validateBulkVehicle(item); err != nil {
			res.Results = append(res.Results, BulkAddItemResult{
				VRM:     label,
				Status:  ResultError,
				Message: fmt.Sprintf("missing required fields: %v", err),
			})
			continue
		}
		if r.vrmExistsLocked(item.VRM) {
			res.Results = append(res.Results, BulkAddItemResult{
				VRM:     item.VRM,
				Status:  ResultError,
				Message: "vehicle with this registration already exists",
			})
			continue
		}
		if item.Status == "" {
			item.Status = models.StatusAvailable
		}
		if item.Branch == "" {
			item.Branch = DefaultBranch
		}
		if item.Category == "" {
			item.Category = DefaultCategory
		}
		r.vehicles = append(r.vehicles, item)
		res.Results = append(res.Results, BulkAddItemResult{
			VRM:     item.VRM,
			Status:  ResultSuccess,
			Message: "vehicle added",
		})
		res.AddedCount++
	}

	if res.AddedCount > 0 {
		if err := r.saveVehiclesLocked(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// vrmExistsLocked also catches duplicates within a single bulk batch,
// since accepted items are appended before later ones are checked.
func (r *Repository) vrmExistsLocked(vrm string) bool {
	for _, v := range r.vehicles {
		if v.VRM == vrm {
			return true
		}
	}
	return false
}

// applyVehicleUpdates applies the whitelisted edit fields; any other
// submitted field is silently ignored. Returns how many fields changed.
func applyVehicleUpdates(v *models.Vehicle, updates map[string]string) int {
	applied := 0
	for field, value := range updates {
		switch field {
		case "colour":
			v.Colour = value
		case "dayRate":
			v.DayRate = value
		case "status":
			v.Status = value
		case "branch":
			v.Branch = value
		case "category":
			v.Category = value
		case "numberSeats":
			v.NumberSeats = value
		default:
			continue
		}
		applied++
	}
	return applied
}

// EditVehicle applies whitelisted updates to the vehicle with the given VRM
// and persists. Updates containing no recognized field fail validation.
func (r *Repository) EditVehicle(vrm string, updates map[string]string) (models.Vehicle, error) {
	if vrm == "" {
		return models.Vehicle{}, fmt.Errorf("%w: registration is required", apperr.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.vehicles {
		if r.vehicles[i].VRM != vrm {
			continue
		}
		if applyVehicleUpdates(&r.vehicles[i], updates) == 0 {
			return models.Vehicle{}, fmt.Errorf("%w: no valid fields to update", apperr.ErrValidation)
		}
		if err := r.saveVehiclesLocked(); err != nil {
			return models.Vehicle{}, err
		}
		return r.vehicles[i], nil
	}
	return models.Vehicle{}, fmt.Errorf("vehicle %q: %w", vrm, apperr.ErrNotFound)
}

// BatchEditItem is one entry of a batch edit request.
type BatchEditItem struct {
	Reg     string            `json:"reg"`
	Updates map[string]string `json:"updates"`
}

// BatchEditItemResult is the per-item outcome of a batch edit.
type BatchEditItemResult struct {
	Reg     string          `json:"reg"`
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Vehicle *models.Vehicle `json:"vehicle,omitempty"`
}

// BatchEditResult reports a batch edit.
type BatchEditResult struct {
	Results []BatchEditItemResult `json:"results"`
}

// BatchEditVehicles processes each item independently — one item's failure
// does not abort the rest — and saves once, only when at least one item
// succeeded.
func (r *Repository) BatchEditVehicles(items []BatchEditItem) (BatchEditResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := BatchEditResult{Results: make([]BatchEditItemResult, 0, len(items))}
	changed := 0
	for _, item := range items {
		idx := -1
		for i := range r.vehicles {
			if r.vehicles[i].VRM == item.Reg {
				idx = i
				break
			}
		}
		if idx < 0 {
			res.Results = append(res.Results, BatchEditItemResult{
				Reg: item.Reg, Status: ResultError, Message: "vehicle not found",
			})
			continue
		}
		if applyVehicleUpdates(&r.vehicles[idx], item.Updates) == 0 {
			res.Results = append(res.Results, BatchEditItemResult{
				Reg: item.Reg, Status: ResultError, Message: "no valid fields to update",
			})
			continue
		}
		v := r.vehicles[idx]
		res.Results = append(res.Results, BatchEditItemResult{
			Reg: item.Reg, Status: ResultSuccess, Vehicle: &v,
		})
		changed++
	}

	if changed > 0 {
		if err := r.saveVehiclesLocked(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// RemoveVehicle removes the vehicle with the given VRM and persists.
// VRM is the canonical removal key for vehicles.
func (r *Repository) RemoveVehicle(vrm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.vehicles {
		if r.vehicles[i].VRM == vrm {
			r.vehicles = append(r.vehicles[:i], r.vehicles[i+1:]...)
			return r.saveVehiclesLocked()
		}
	}
	return fmt.Errorf("vehicle %q: %w", vrm, apperr.ErrNotFound)
}

// RemoveBatchResult reports a batch removal. A zero RemovedCount with all
// keys in NotFound distinguishes "nothing matched" from partial success.
type RemoveBatchResult struct {
	RemovedCount int      `json:"removed_count"`
	NotFound     []string `json:"not_found,omitempty"`
}

// RemoveVehicles removes every listed VRM that exists, saving once when at
// least one was removed.
func (r *Repository) RemoveVehicles(vrms []string) (RemoveBatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res RemoveBatchResult
	for _, vrm := range vrms {
		found := false
		for i := range r.vehicles {
			if r.vehicles[i].VRM == vrm {
				r.vehicles = append(r.vehicles[:i], r.vehicles[i+1:]...)
				found = true
				break
			}
		}
		if found {
			res.RemovedCount++
		} else {
			res.NotFound = append(res.NotFound, vrm)
		}
	}

	if res.RemovedCount > 0 {
		if err := r.saveVehiclesLocked(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// AvailableVehicles returns the vehicles currently AVAILABLE, in insertion
// order.
func (r *Repository) AvailableVehicles() []models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range r.vehicles {
		if v.Status == models.StatusAvailable {
			out = append(out, v)
		}
	}
	return out
}

// VehiclesByBranch groups the fleet by branch name.
func (r *Repository) VehiclesByBranch() map[string][]models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]models.Vehicle{}
	for _, v := range r.vehicles {
		out[v.Branch] = append(out[v.Branch], v)
	}
	return out
}

// VehiclesInBranch returns the vehicles of one branch, in insertion order.
func (r *Repository) VehiclesInBranch(branch string) []models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range r.vehicles {
		if v.Branch == branch {
			out = append(out, v)
		}
	}
	return out
}

// BranchList returns the distinct branch names in first-seen order.
func (r *Repository) BranchList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return distinct(r.vehicles, func(v models.Vehicle) string { return v.Branch })
}

// VehiclesByCategory groups the fleet by category.
func (r *Repository) VehiclesByCategory() map[string][]models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]models.Vehicle{}
	for _, v := range r.vehicles {
		out[v.Category] = append(out[v.Category], v)
	}
	return out
}

// CategoryList returns the distinct categories in first-seen order.
func (r *Repository) CategoryList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return distinct(r.vehicles, func(v models.Vehicle) string { return v.Category })
}

func distinct(vehicles []models.Vehicle, key func(models.Vehicle) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range vehicles {
		k := key(v)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// CustomerByID looks up a customer by id, the canonical customer key.
func (r *Repository) CustomerByID(id string) (models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, fmt.Errorf("customer %q: %w", id, apperr.ErrNotFound)
}

// AddCustomer appends a customer and persists, rejecting a duplicate id.
// Status defaults to ACTIVE and the rentals counter to "0"; a uuid is
// generated when id is absent.
func (r *Repository) AddCustomer(c models.Customer) (models.Customer, error) {
	if c.Name == "" {
		return models.Customer{}, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.CustomerActive
	}
	if c.Rentals == "" {
		c.Rentals = "0"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.ID == c.ID {
			return models.Customer{}, fmt.Errorf("customer %q: %w", c.ID, apperr.ErrDuplicate)
		}
	}
	r.customers = append(r.customers, c)
	if err := r.saveCustomersLocked(); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

func applyCustomerUpdates(c *models.Customer, updates map[string]string) int {
	applied := 0
	for field, value := range updates {
		switch field {
		case "name":
			c.Name = value
		case "email":
			c.Email = value
		case "phone":
			c.Phone = value
		case "license":
			c.License = value
		case "status":
			c.Status = value
		default:
			continue
		}
		applied++
	}
	return applied
}

// UpdateCustomer applies whitelisted updates to the customer with the given
// id and persists.
func (r *Repository) UpdateCustomer(id string, updates map[string]string) (models.Customer, error) {
	if id == "" {
		return models.Customer{}, fmt.Errorf("%w: id is required", apperr.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.customers {
		if r.customers[i].ID != id {
			continue
		}
		if applyCustomerUpdates(&r.customers[i], updates) == 0 {
			return models.Customer{}, fmt.Errorf("%w: no valid fields to update", apperr.ErrValidation)
		}
		if err := r.saveCustomersLocked(); err != nil {
			return models.Customer{}, err
		}
		return r.customers[i], nil
	}
	return models.Customer{}, fmt.Errorf("customer %q: %w", id, apperr.ErrNotFound)
}

// RemoveCustomer removes the customer with the given id and persists.
func (r *Repository) RemoveCustomer(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.customers {
		if r.customers[i].ID == id {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			return r.saveCustomersLocked()
		}
	}
	return fmt.Errorf("customer %q: %w", id, apperr.ErrNotFound)
}
