package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
	"github.com/moore-mac/vehicle-rental-manager/internal/testutil"
)

func testRouter(t *testing.T) (*fleet.Repository, http.Handler) {
	t.Helper()
	repo := testutil.Repository(t)
	return repo, NewRouter(repo, nil)
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddAndShowVehicle(t *testing.T) {
	_, router := testRouter(t)

	q := url.Values{}
	q.Set("make", "Ford")
	q.Set("model", "Focus")
	q.Set("vrm", "AB12CDE")
	q.Set("dayRate", "45.50")
	w := do(t, router, http.MethodPost, "/cars/add?"+q.Encode(), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/cars/show?reg=AB12CDE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("show status = %d", w.Code)
	}
	var v models.Vehicle
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.Make != "Ford" || v.Status != models.StatusAvailable {
		t.Errorf("vehicle = %+v", v)
	}
	if v.ID == "" {
		t.Error("id should be generated when absent")
	}
}

func TestShowVehicleNotFound(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodGet, "/cars/show?reg=ZZ99ZZZ", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAddWithoutReg(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodPost, "/cars/add?make=Ford", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRentAndReturn(t *testing.T) {
	repo, router := testRouter(t)
	if _, err := repo.AddVehicle(testutil.Vehicle("AB12CDE")); err != nil {
		t.Fatal(err)
	}

	w := do(t, router, http.MethodPut, "/cars/rent?reg=AB12CDE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rent status = %d", w.Code)
	}
	v, _ := repo.VehicleByVRM("AB12CDE")
	if v.Status != models.StatusRented {
		t.Errorf("status after rent = %q", v.Status)
	}

	// Renting an already-rented vehicle still succeeds.
	w = do(t, router, http.MethodGet, "/cars/rent?reg=AB12CDE", nil)
	if w.Code != http.StatusOK {
		t.Errorf("second rent status = %d", w.Code)
	}

	w = do(t, router, http.MethodPut, "/cars/return?reg=AB12CDE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("return status = %d", w.Code)
	}
	v, _ = repo.VehicleByVRM("AB12CDE")
	if v.Status != models.StatusAvailable {
		t.Errorf("status after return = %q", v.Status)
	}
}

func TestRentUnknownVehicle(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodPut, "/cars/rent?reg=NOPE", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearchNoFiltersIsEmpty(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	w := do(t, router, http.MethodGet, "/cars/search", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res fleet.VehicleSearchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Count != 0 || len(res.Results) != 0 {
		t.Errorf("no-filter search should match nothing, got %+v", res)
	}
}

func TestSearchByQueryAndPrice(t *testing.T) {
	repo, router := testRouter(t)
	cheap := testutil.Vehicle("AA11AAA")
	cheap.DayRate = "30"
	dear := testutil.Vehicle("BB22BBB")
	dear.DayRate = "90"
	_, _ = repo.AddVehicle(cheap)
	_, _ = repo.AddVehicle(dear)

	w := do(t, router, http.MethodGet, "/cars/search?query=ford&max_price=50", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res fleet.VehicleSearchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Count != 1 || res.Results[0].VRM != "AA11AAA" {
		t.Errorf("result = %+v", res)
	}
}

func TestSearchBadMaxPrice(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodGet, "/cars/search?max_price=cheap", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestBulkAddReportsDuplicates(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	items := []models.Vehicle{
		testutil.Vehicle("XY69ZZZ"),
		testutil.Vehicle("AB12CDE"), // already present
		{VRM: "NO11FLD"},            // missing required fields
	}
	w := do(t, router, http.MethodPost, "/cars/bulk-add", items)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res fleet.BulkAddResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.AddedCount != 1 {
		t.Errorf("added_count = %d, want 1", res.AddedCount)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(res.Results))
	}
	if res.Results[0].Status != fleet.ResultSuccess ||
		res.Results[1].Status != fleet.ResultError ||
		res.Results[2].Status != fleet.ResultError {
		t.Errorf("results = %+v", res.Results)
	}
}

func TestEditVehicle(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	w := do(t, router, http.MethodPut, "/cars/edit?reg=AB12CDE&colour=Red&dayRate=60", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body = %s", w.Code, w.Body.String())
	}
	v, _ := repo.VehicleByVRM("AB12CDE")
	if v.Colour != "Red" || v.DayRate != "60" {
		t.Errorf("vehicle = %+v", v)
	}
}

func TestEditVehicleNoValidFields(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	// make is not in the edit whitelist.
	w := do(t, router, http.MethodPut, "/cars/edit?reg=AB12CDE&make=Kia", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestBatchEditMixedResults(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	items := []fleet.BatchEditItem{
		{Reg: "AB12CDE", Updates: map[string]string{"status": models.StatusDamaged}},
		{Reg: "MISSING", Updates: map[string]string{"status": models.StatusDamaged}},
	}
	w := do(t, router, http.MethodPost, "/cars/batch-edit", items)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res fleet.BatchEditResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(res.Results))
	}
	if res.Results[0].Status != fleet.ResultSuccess || res.Results[1].Status != fleet.ResultError {
		t.Errorf("results = %+v", res.Results)
	}
}

func TestRemoveVehicle(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AB12CDE"))

	w := do(t, router, http.MethodPost, "/cars/remove?reg=AB12CDE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	if _, err := repo.VehicleByVRM("AB12CDE"); err == nil {
		t.Error("vehicle should be gone")
	}

	w = do(t, router, http.MethodPost, "/cars/remove?reg=AB12CDE", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", w.Code)
	}
}

func TestRemoveBatch(t *testing.T) {
	repo, router := testRouter(t)
	_, _ = repo.AddVehicle(testutil.Vehicle("AA11AAA"))
	_, _ = repo.AddVehicle(testutil.Vehicle("BB22BBB"))

	w := do(t, router, http.MethodPost, "/cars/remove-batch",
		RemoveBatchRequest{Regs: []string{"AA11AAA", "NOPE"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res fleet.RemoveBatchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.RemovedCount != 1 {
		t.Errorf("removed_count = %d, want 1", res.RemovedCount)
	}
	if len(res.NotFound) != 1 || res.NotFound[0] != "NOPE" {
		t.Errorf("not_found = %v", res.NotFound)
	}
}

func TestFleetReport(t *testing.T) {
	repo, router := testRouter(t)
	a := testutil.Vehicle("AA11AAA")
	a.DayRate = "50"
	b := testutil.Vehicle("BB22BBB")
	b.DayRate = "100"
	b.Status = models.StatusRented
	_, _ = repo.AddVehicle(a)
	_, _ = repo.AddVehicle(b)

	w := do(t, router, http.MethodGet, "/analytics/fleet", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rep struct {
		Summary struct {
			TotalVehicles   int     `json:"total_vehicles"`
			UtilizationRate float64 `json:"utilization_rate"`
			AverageDayRate  float64 `json:"average_day_rate"`
		} `json:"summary"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &rep)
	if rep.Summary.TotalVehicles != 2 || rep.Summary.UtilizationRate != 50.0 || rep.Summary.AverageDayRate != 75.0 {
		t.Errorf("summary = %+v", rep.Summary)
	}
}

func TestBranchReportUnknown(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodGet, "/analytics/branch?name=Ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBreakdownRequiresBranch(t *testing.T) {
	_, router := testRouter(t)
	for _, path := range []string{
		"/analytics/rental-utilisation-by-branch",
		"/analytics/status-by-branch",
		"/analytics/category-by-branch",
		"/analytics/rented-by-category",
		"/analytics/issues-percentage",
	} {
		w := do(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
}

func TestCustomerLifecycle(t *testing.T) {
	repo, router := testRouter(t)

	w := do(t, router, http.MethodPost, "/customers/add?name=Ada+Lovelace&email=ada@example.com", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}
	var added struct {
		Customer models.Customer `json:"customer"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &added)
	id := added.Customer.ID
	if id == "" {
		t.Fatal("id should be generated")
	}
	if added.Customer.Status != models.CustomerActive || added.Customer.Rentals != "0" {
		t.Errorf("defaults = %+v", added.Customer)
	}

	w = do(t, router, http.MethodPost, "/customers/update?id="+id+"&phone=01234", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}
	c, _ := repo.CustomerByID(id)
	if c.Phone != "01234" {
		t.Errorf("phone = %q", c.Phone)
	}

	w = do(t, router, http.MethodPost, "/customers/remove?id="+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	if _, err := repo.CustomerByID(id); err == nil {
		t.Error("customer should be gone")
	}
}

func TestAddCustomerDuplicateID(t *testing.T) {
	_, router := testRouter(t)
	w := do(t, router, http.MethodPost, "/customers/add?id=c1&name=First", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("first add = %d", w.Code)
	}
	w = do(t, router, http.MethodPost, "/customers/add?id=c1&name=Second", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate add = %d, want 409", w.Code)
	}
}

func TestSearchCustomers(t *testing.T) {
	_, router := testRouter(t)
	_ = do(t, router, http.MethodPost, "/customers/add?name=Ada+Lovelace&email=ada@example.com", nil)
	_ = do(t, router, http.MethodPost, "/customers/add?name=Charles+Babbage", nil)

	w := do(t, router, http.MethodGet, "/customers/search?query=ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res fleet.CustomerSearchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Count != 1 || res.Results[0].Name != "Ada Lovelace" {
		t.Errorf("result = %+v", res)
	}
}

func TestBranchListingAndGrouping(t *testing.T) {
	repo, router := testRouter(t)
	north := testutil.Vehicle("AA11AAA")
	north.Branch = "North"
	south := testutil.Vehicle("BB22BBB")
	south.Branch = "South"
	_, _ = repo.AddVehicle(north)
	_, _ = repo.AddVehicle(south)

	w := do(t, router, http.MethodGet, "/cars/branch?name=North", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var scoped struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &scoped)
	if scoped.Count != 1 {
		t.Errorf("count = %d, want 1", scoped.Count)
	}

	w = do(t, router, http.MethodGet, "/cars/branch-list", nil)
	var list struct {
		Branches []string `json:"branches"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Branches) != 2 {
		t.Errorf("branches = %v", list.Branches)
	}
}
