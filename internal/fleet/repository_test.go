package fleet

import (
	"errors"
	"testing"

	"github.com/moore-mac/vehicle-rental-manager/internal/apperr"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
	"github.com/moore-mac/vehicle-rental-manager/internal/storage"
)

// countingStore wraps a Provider to count table writes.
type countingStore struct {
	storage.Provider
	writes map[string]int
}

func newCountingStore(t *testing.T) *countingStore {
	t.Helper()
	d, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return &countingStore{Provider: d, writes: map[string]int{}}
}

func (s *countingStore) WriteAll(name string, header []string, rows []map[string]string) error {
	s.writes[name]++
	return s.Provider.WriteAll(name, header, rows)
}

func testRepo(t *testing.T) (*Repository, *countingStore) {
	t.Helper()
	store := newCountingStore(t)
	repo := NewRepository(store)
	if err := repo.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return repo, store
}

func sample(vrm string) models.Vehicle {
	return models.Vehicle{
		ID:       "veh-" + vrm,
		Make:     "Ford",
		Model:    "Focus",
		VRM:      vrm,
		Category: "Standard",
		DayRate:  "45",
		Branch:   "Main Branch",
	}
}

func TestLoadMissingFilesYieldsEmpty(t *testing.T) {
	repo, _ := testRepo(t)
	if n := len(repo.Vehicles()); n != 0 {
		t.Errorf("vehicles = %d, want 0", n)
	}
	if n := len(repo.Customers()); n != 0 {
		t.Errorf("customers = %d, want 0", n)
	}
}

func TestAddThenFetchRoundTrip(t *testing.T) {
	repo, store := testRepo(t)
	added, err := repo.AddVehicle(sample("AB12CDE"))
	if err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}
	if added.Status != models.StatusAvailable {
		t.Errorf("status = %q, want default AVAILABLE", added.Status)
	}

	got, err := repo.VehicleByVRM("AB12CDE")
	if err != nil {
		t.Fatalf("VehicleByVRM: %v", err)
	}
	if got != added {
		t.Errorf("fetched = %+v, want %+v", got, added)
	}

	// The add flushed through to disk: a fresh repository sees it.
	fresh := NewRepository(store)
	if err := fresh.Load(); err != nil {
		t.Fatalf("fresh Load: %v", err)
	}
	if _, err := fresh.VehicleByVRM("AB12CDE"); err != nil {
		t.Errorf("vehicle not persisted: %v", err)
	}
}

func TestAddGeneratesID(t *testing.T) {
	repo, _ := testRepo(t)
	v := sample("AB12CDE")
	v.ID = ""
	added, err := repo.AddVehicle(v)
	if err != nil {
		t.Fatal(err)
	}
	if added.ID == "" {
		t.Error("id should be generated")
	}
}

func TestAddRequiresVRM(t *testing.T) {
	repo, _ := testRepo(t)
	v := sample("AB12CDE")
	v.VRM = ""
	if _, err := repo.AddVehicle(v); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAddAllowsDuplicateVRM(t *testing.T) {
	repo, _ := testRepo(t)
	if _, err := repo.AddVehicle(sample("AB12CDE")); err != nil {
		t.Fatal(err)
	}
	// Single add performs no duplicate check; bulk add does.
	if _, err := repo.AddVehicle(sample("AB12CDE")); err != nil {
		t.Errorf("duplicate single add should succeed, got %v", err)
	}
	if n := len(repo.Vehicles()); n != 2 {
		t.Errorf("vehicles = %d, want 2", n)
	}
}

func TestRentReturnChangesOnlyStatus(t *testing.T) {
	repo, _ := testRepo(t)
	added, _ := repo.AddVehicle(sample("AB12CDE"))

	rented, err := repo.Rent("AB12CDE")
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if rented.Status != models.StatusRented {
		t.Errorf("status = %q", rented.Status)
	}

	returned, err := repo.Return("AB12CDE")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned != added {
		t.Errorf("return should restore the original record: %+v vs %+v", returned, added)
	}
}

func TestRentUnknown(t *testing.T) {
	repo, _ := testRepo(t)
	if _, err := repo.Rent("NOPE"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBulkAddCountsAndDuplicates(t *testing.T) {
	repo, store := testRepo(t)
	_, _ = repo.AddVehicle(sample("AA11AAA"))
	store.writes = map[string]int{}

	items := []models.Vehicle{
		sample("BB22BBB"),
		sample("AA11AAA"), // duplicate of existing
		sample("CC33CCC"),
		sample("CC33CCC"), // duplicate within the batch
		{ID: "x", VRM: "DD44DDD"}, // missing make/model
	}
	res, err := repo.BulkAddVehicles(items)
	if err != nil {
		t.Fatalf("BulkAddVehicles: %v", err)
	}
	if res.AddedCount != 2 {
		t.Errorf("added_count = %d, want 2", res.AddedCount)
	}
	errCount := 0
	for _, item := range res.Results {
		if item.Status == ResultError {
			errCount++
		}
	}
	if errCount != 3 {
		t.Errorf("errors = %d, want 3", errCount)
	}
	if store.writes[VehicleTable] != 1 {
		t.Errorf("writes = %d, want exactly 1", store.writes[VehicleTable])
	}
}

func TestBulkAddAppliesDefaults(t *testing.T) {
	repo, _ := testRepo(t)
	item := models.Vehicle{ID: "v1", Make: "Kia", Model: "Rio", VRM: "EE55EEE"}
	res, err := repo.BulkAddVehicles([]models.Vehicle{item})
	if err != nil {
		t.Fatal(err)
	}
	if res.AddedCount != 1 {
		t.Fatalf("added_count = %d", res.AddedCount)
	}
	v, _ := repo.VehicleByVRM("EE55EEE")
	if v.Status != models.StatusAvailable || v.Branch != DefaultBranch || v.Category != DefaultCategory {
		t.Errorf("defaults not applied: %+v", v)
	}
}

func TestBulkAddAllRejectedSkipsSave(t *testing.T) {
	repo, store := testRepo(t)
	store.writes = map[string]int{}
	res, err := repo.BulkAddVehicles([]models.Vehicle{{VRM: "X"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.AddedCount != 0 {
		t.Errorf("added_count = %d, want 0", res.AddedCount)
	}
	if store.writes[VehicleTable] != 0 {
		t.Errorf("writes = %d, want 0 when nothing was added", store.writes[VehicleTable])
	}
}

func TestEditWhitelist(t *testing.T) {
	repo, _ := testRepo(t)
	_, _ = repo.AddVehicle(sample("AB12CDE"))

	v, err := repo.EditVehicle("AB12CDE", map[string]string{
		"colour": "Red",
		"make":   "Kia", // not whitelisted, ignored
	})
	if err != nil {
		t.Fatalf("EditVehicle: %v", err)
	}
	if v.Colour != "Red" {
		t.Errorf("colour = %q", v.Colour)
	}
	if v.Make != "Ford" {
		t.Errorf("make should be untouched, got %q", v.Make)
	}
}

func TestEditNoValidFields(t *testing.T) {
	repo, _ := testRepo(t)
	_, _ = repo.AddVehicle(sample("AB12CDE"))
	if _, err := repo.EditVehicle("AB12CDE", map[string]string{"make": "Kia"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if _, err := repo.EditVehicle("NOPE", map[string]string{"colour": "Red"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBatchEditIndependentItemsSaveOnce(t *testing.T) {
	repo, store := testRepo(t)
	_, _ = repo.AddVehicle(sample("AA11AAA"))
	_, _ = repo.AddVehicle(sample("BB22BBB"))
	store.writes = map[string]int{}

	res, err := repo.BatchEditVehicles([]BatchEditItem{
		{Reg: "AA11AAA", Updates: map[string]string{"status": models.StatusDamaged}},
		{Reg: "MISSING", Updates: map[string]string{"status": models.StatusDamaged}},
		{Reg: "BB22BBB", Updates: map[string]string{"make": "Kia"}}, // nothing whitelisted
	})
	if err != nil {
		t.Fatalf("BatchEditVehicles: %v", err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(res.Results))
	}
	if res.Results[0].Status != ResultSuccess || res.Results[0].Vehicle == nil {
		t.Errorf("first item = %+v", res.Results[0])
	}
	if res.Results[1].Status != ResultError || res.Results[2].Status != ResultError {
		t.Errorf("results = %+v", res.Results)
	}
	if store.writes[VehicleTable] != 1 {
		t.Errorf("writes = %d, want exactly 1", store.writes[VehicleTable])
	}
}

func TestRemoveVehicle(t *testing.T) {
	repo, _ := testRepo(t)
	_, _ = repo.AddVehicle(sample("AB12CDE"))
	if err := repo.RemoveVehicle("AB12CDE"); err != nil {
		t.Fatalf("RemoveVehicle: %v", err)
	}
	if err := repo.RemoveVehicle("AB12CDE"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRemoveBatch(t *testing.T) {
	repo, _ := testRepo(t)
	_, _ = repo.AddVehicle(sample("AA11AAA"))
	_, _ = repo.AddVehicle(sample("BB22BBB"))

	res, err := repo.RemoveVehicles([]string{"AA11AAA", "NOPE", "BB22BBB"})
	if err != nil {
		t.Fatalf("RemoveVehicles: %v", err)
	}
	if res.RemovedCount != 2 {
		t.Errorf("removed_count = %d, want 2", res.RemovedCount)
	}
	if len(res.NotFound) != 1 || res.NotFound[0] != "NOPE" {
		t.Errorf("not_found = %v", res.NotFound)
	}
}

func TestEmptyFleetPersistsHeaderOnly(t *testing.T) {
	repo, store := testRepo(t)
	_, _ = repo.AddVehicle(sample("AB12CDE"))
	if err := repo.RemoveVehicle("AB12CDE"); err != nil {
		t.Fatal(err)
	}

	// A fleet emptied by removals stays empty across restarts.
	fresh := NewRepository(store)
	if err := fresh.Load(); err != nil {
		t.Fatalf("fresh Load: %v", err)
	}
	if n := len(fresh.Vehicles()); n != 0 {
		t.Errorf("vehicles after reload = %d, want 0", n)
	}
}

func TestBranchAndCategoryListings(t *testing.T) {
	repo, _ := testRepo(t)
	north := sample("AA11AAA")
	north.Branch = "North"
	north.Category = "SUV"
	south := sample("BB22BBB")
	south.Branch = "South"
	_, _ = repo.AddVehicle(north)
	_, _ = repo.AddVehicle(south)
	_, _ = repo.AddVehicle(sample("CC33CCC")) // Main Branch / Standard

	branches := repo.BranchList()
	if len(branches) != 3 || branches[0] != "North" {
		t.Errorf("branches = %v", branches)
	}
	if got := repo.VehiclesInBranch("North"); len(got) != 1 || got[0].VRM != "AA11AAA" {
		t.Errorf("north vehicles = %v", got)
	}
	if got := repo.VehiclesByCategory(); len(got["SUV"]) != 1 || len(got["Standard"]) != 2 {
		t.Errorf("by category = %v", got)
	}
}

func TestAvailableVehicles(t *testing.T) {
	repo, _ := testRepo(t)
	_, _ = repo.AddVehicle(sample("AA11AAA"))
	_, _ = repo.AddVehicle(sample("BB22BBB"))
	_, _ = repo.Rent("BB22BBB")

	avail := repo.AvailableVehicles()
	if len(avail) != 1 || avail[0].VRM != "AA11AAA" {
		t.Errorf("available = %v", avail)
	}
}

func TestCustomerLifecycle(t *testing.T) {
	repo, _ := testRepo(t)
	added, err := repo.AddCustomer(models.Customer{Name: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}
	if added.ID == "" || added.Status != models.CustomerActive || added.Rentals != "0" {
		t.Errorf("defaults = %+v", added)
	}

	if _, err := repo.AddCustomer(models.Customer{ID: added.ID, Name: "Imposter"}); !errors.Is(err, apperr.ErrDuplicate) {
		t.Errorf("error = %v, want ErrDuplicate", err)
	}

	updated, err := repo.UpdateCustomer(added.ID, map[string]string{"email": "ada@example.com"})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Email != "ada@example.com" {
		t.Errorf("email = %q", updated.Email)
	}

	if err := repo.RemoveCustomer(added.ID); err != nil {
		t.Fatalf("RemoveCustomer: %v", err)
	}
	if _, err := repo.CustomerByID(added.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAddCustomerRequiresName(t *testing.T) {
	repo, _ := testRepo(t)
	if _, err := repo.AddCustomer(models.Customer{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
