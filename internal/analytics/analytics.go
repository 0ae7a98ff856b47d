// Package analytics computes aggregate fleet statistics.
//
// Every function is pure over the vehicle snapshot it is given; nothing
// here touches the repository or storage. All rate computations guard a
// zero divisor by yielding 0.
package analytics

import (
	"fmt"
	"math"

	"github.com/moore-mac/vehicle-rental-manager/internal/apperr"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

// Summary is the headline block of the fleet report.
type Summary struct {
	TotalVehicles     int     `json:"total_vehicles"`
	AvailableVehicles int     `json:"available_vehicles"`
	RentedVehicles    int     `json:"rented_vehicles"`
	UtilizationRate   float64 `json:"utilization_rate"`
	AverageDayRate    float64 `json:"average_day_rate"`
}

// Composition breaks the fleet down by make and category.
type Composition struct {
	ByMake     map[string]int `json:"by_make"`
	ByCategory map[string]int `json:"by_category"`
}

// BranchCounts is the per-branch slice of the fleet report.
type BranchCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Rented    int `json:"rented"`
}

// FleetReport is the full fleet analytics payload.
type FleetReport struct {
	Summary           Summary                 `json:"summary"`
	FleetComposition  Composition             `json:"fleet_composition"`
	BranchPerformance map[string]BranchCounts `json:"branch_performance"`
}

// Fleet summarizes the whole fleet.
//
// The average day rate sums every parseable rate but divides by the total
// vehicle count, not the count of parseable rates; rate-less vehicles pull
// the average down. That denominator is part of the report's contract.
func Fleet(vehicles []models.Vehicle) FleetReport {
	total := len(vehicles)
	rep := FleetReport{
		FleetComposition: Composition{
			ByMake:     map[string]int{},
			ByCategory: map[string]int{},
		},
		BranchPerformance: map[string]BranchCounts{},
	}

	var rateSum float64
	for _, v := range vehicles {
		switch v.Status {
		case models.StatusAvailable:
			rep.Summary.AvailableVehicles++
		case models.StatusRented:
			rep.Summary.RentedVehicles++
		}
		if rate, ok := v.DayRateValue(); ok {
			rateSum += rate
		}
		rep.FleetComposition.ByMake[v.Make]++
		rep.FleetComposition.ByCategory[v.Category]++

		bc := rep.BranchPerformance[v.Branch]
		bc.Total++
		switch v.Status {
		case models.StatusAvailable:
			bc.Available++
		case models.StatusRented:
			bc.Rented++
		}
		rep.BranchPerformance[v.Branch] = bc
	}

	rep.Summary.TotalVehicles = total
	rep.Summary.UtilizationRate = percent(rep.Summary.RentedVehicles, total)
	rep.Summary.AverageDayRate = round2(ratio(rateSum, total))
	return rep
}

// BranchReport is the analytics payload for one branch.
type BranchReport struct {
	BranchName           string         `json:"branch_name"`
	TotalVehicles        int            `json:"total_vehicles"`
	AvailableVehicles    int            `json:"available_vehicles"`
	RentedVehicles       int            `json:"rented_vehicles"`
	UtilizationRate      float64        `json:"utilization_rate"`
	AverageDayRate       float64        `json:"average_day_rate"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}

// Branch summarizes a single branch. A branch with zero vehicles is a
// not-found condition, not a zero-filled report.
func Branch(vehicles []models.Vehicle, name string) (BranchReport, error) {
	rep := BranchReport{BranchName: name, CategoryDistribution: map[string]int{}}

	var rateSum float64
	for _, v := range vehicles {
		if v.Branch != name {
			continue
		}
		rep.TotalVehicles++
		switch v.Status {
		case models.StatusAvailable:
			rep.AvailableVehicles++
		case models.StatusRented:
			rep.RentedVehicles++
		}
		if rate, ok := v.DayRateValue(); ok {
			rateSum += rate
		}
		rep.CategoryDistribution[v.Category]++
	}
	if rep.TotalVehicles == 0 {
		return BranchReport{}, fmt.Errorf("branch %q: %w", name, apperr.ErrNotFound)
	}

	rep.UtilizationRate = percent(rep.RentedVehicles, rep.TotalVehicles)
	rep.AverageDayRate = round2(ratio(rateSum, rep.TotalVehicles))
	return rep, nil
}

// RentalReport summarizes current rentals across the fleet.
type RentalReport struct {
	CurrentRentals    int            `json:"current_rentals"`
	RentalRate        float64        `json:"rental_rate"`
	RentalsByCategory map[string]int `json:"rentals_by_category"`
	RentalsByBranch   map[string]int `json:"rentals_by_branch"`
}

// Rentals reports the vehicles currently RENTED, broken down by category
// and branch.
func Rentals(vehicles []models.Vehicle) RentalReport {
	rep := RentalReport{
		RentalsByCategory: map[string]int{},
		RentalsByBranch:   map[string]int{},
	}
	for _, v := range vehicles {
		if v.Status != models.StatusRented {
			continue
		}
		rep.CurrentRentals++
		rep.RentalsByCategory[v.Category]++
		rep.RentalsByBranch[v.Branch]++
	}
	rep.RentalRate = percent(rep.CurrentRentals, len(vehicles))
	return rep
}

// BranchUtilization is the rented share of one branch.
type BranchUtilization struct {
	Branch          string  `json:"branch"`
	TotalVehicles   int     `json:"total_vehicles"`
	RentedVehicles  int     `json:"rented_vehicles"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// Utilization computes the rented percentage for one branch. A branch with
// no vehicles yields an empty (all-zero) breakdown, not an error.
func Utilization(vehicles []models.Vehicle, branch string) BranchUtilization {
	rep := BranchUtilization{Branch: branch}
	for _, v := range vehicles {
		if v.Branch != branch {
			continue
		}
		rep.TotalVehicles++
		if v.Status == models.StatusRented {
			rep.RentedVehicles++
		}
	}
	rep.UtilizationRate = percent(rep.RentedVehicles, rep.TotalVehicles)
	return rep
}

// StatusByBranch counts one branch's vehicles by status.
func StatusByBranch(vehicles []models.Vehicle, branch string) map[string]int {
	out := map[string]int{}
	for _, v := range vehicles {
		if v.Branch == branch {
			out[v.Status]++
		}
	}
	return out
}

// CategoryByBranch counts one branch's vehicles by category.
func CategoryByBranch(vehicles []models.Vehicle, branch string) map[string]int {
	out := map[string]int{}
	for _, v := range vehicles {
		if v.Branch == branch {
			out[v.Category]++
		}
	}
	return out
}

// RentedByCategory counts one branch's RENTED vehicles by category.
func RentedByCategory(vehicles []models.Vehicle, branch string) map[string]int {
	out := map[string]int{}
	for _, v := range vehicles {
		if v.Branch == branch && v.Status == models.StatusRented {
			out[v.Category]++
		}
	}
	return out
}

// BranchIssues is the out-of-service share of one branch, where an issue
// is a DAMAGED or SERVICEREQ status.
type BranchIssues struct {
	Branch           string  `json:"branch"`
	TotalVehicles    int     `json:"total_vehicles"`
	IssueVehicles    int     `json:"issue_vehicles"`
	IssuesPercentage float64 `json:"issues_percentage"`
}

// Issues computes the issue percentage for one branch.
func Issues(vehicles []models.Vehicle, branch string) BranchIssues {
	rep := BranchIssues{Branch: branch}
	for _, v := range vehicles {
		if v.Branch != branch {
			continue
		}
		rep.TotalVehicles++
		if v.HasIssue() {
			rep.IssueVehicles++
		}
	}
	rep.IssuesPercentage = percent(rep.IssueVehicles, rep.TotalVehicles)
	return rep
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func ratio(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
