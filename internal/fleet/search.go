package fleet

import (
	"strings"

	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

// VehicleFilter is the set of search criteria. Provided filters AND
// together; absent ones impose no constraint. Limit caps the result count
// after filtering and is not itself a filter.
type VehicleFilter struct {
	Query    string
	Branch   string
	Status   string
	Category string
	MaxPrice *float64
	Limit    int
}

func (f VehicleFilter) empty() bool {
	return f.Query == "" && f.Branch == "" && f.Status == "" &&
		f.Category == "" && f.MaxPrice == nil
}

// VehicleSearchResult carries the matches in insertion order, their count,
// and an echo of the filters that were actually applied.
type VehicleSearchResult struct {
	Results     []models.Vehicle `json:"results"`
	Count       int              `json:"count"`
	FiltersUsed map[string]any   `json:"filters_used"`
}

// vehicleQueryFields are the columns the free-text query matches against.
var vehicleQueryFields = func(v models.Vehicle) []string {
	return []string{v.Make, v.Model, v.Colour, v.VRM, v.Category, v.Branch}
}

// SearchVehicles evaluates the filter over a snapshot. A filter with no
// criteria returns an empty result set, not the full collection: "search
// nothing" is defined to find nothing, listing is a separate operation.
func SearchVehicles(vehicles []models.Vehicle, f VehicleFilter) VehicleSearchResult {
	res := VehicleSearchResult{Results: []models.Vehicle{}, FiltersUsed: map[string]any{}}
	if f.empty() {
		return res
	}

	query := strings.ToLower(f.Query)
	for _, v := range vehicles {
		if query != "" && !matchesQuery(vehicleQueryFields(v), query) {
			continue
		}
		if f.Branch != "" && v.Branch != f.Branch {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.MaxPrice != nil {
			rate, ok := v.DayRateValue()
			if !ok || rate > *f.MaxPrice {
				// Unparseable rates are non-matching, not an error.
				continue
			}
		}
		res.Results = append(res.Results, v)
		if f.Limit > 0 && len(res.Results) >= f.Limit {
			break
		}
	}

	res.Count = len(res.Results)
	if query != "" {
		res.FiltersUsed["query"] = query
	}
	if f.Branch != "" {
		res.FiltersUsed["branch"] = f.Branch
	}
	if f.Status != "" {
		res.FiltersUsed["status"] = f.Status
	}
	if f.Category != "" {
		res.FiltersUsed["category"] = f.Category
	}
	if f.MaxPrice != nil {
		res.FiltersUsed["max_price"] = *f.MaxPrice
	}
	if f.Limit > 0 {
		res.FiltersUsed["limit"] = f.Limit
	}
	return res
}

// CustomerFilter is the customer search criteria.
type CustomerFilter struct {
	Query string
	Limit int
}

// CustomerSearchResult mirrors VehicleSearchResult for the roster.
type CustomerSearchResult struct {
	Results     []models.Customer `json:"results"`
	Count       int               `json:"count"`
	FiltersUsed map[string]any    `json:"filters_used"`
}

// SearchCustomers matches the free-text query against name, email, phone
// and license. The zero-filter policy matches SearchVehicles.
func SearchCustomers(customers []models.Customer, f CustomerFilter) CustomerSearchResult {
	res := CustomerSearchResult{Results: []models.Customer{}, FiltersUsed: map[string]any{}}
	if f.Query == "" {
		return res
	}

	query := strings.ToLower(f.Query)
	for _, c := range customers {
		if !matchesQuery([]string{c.Name, c.Email, c.Phone, c.License}, query) {
			continue
		}
		res.Results = append(res.Results, c)
		if f.Limit > 0 && len(res.Results) >= f.Limit {
			break
		}
	}

	res.Count = len(res.Results)
	res.FiltersUsed["query"] = query
	if f.Limit > 0 {
		res.FiltersUsed["limit"] = f.Limit
	}
	return res
}

func matchesQuery(fields []string, query string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
