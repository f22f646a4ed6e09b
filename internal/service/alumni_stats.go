package service

import (
	"math"
	"sort"
	"strconv"

	"github.com/noah-isme/alumni-hub-api/internal/dto"
	"github.com/noah-isme/alumni-hub-api/internal/models"
)

// computeDashboardStats aggregates active records. Percentages divide by the collection size or the
// active count depending on base.
func computeDashboardStats(records []models.Alumni, base dto.PercentBase, topYears int) dto.DashboardStats {
	stats := dto.DashboardStats{
		ByDepartment: []dto.DepartmentCount{},
		ByYear:       []dto.YearCount{},
		PercentBase:  base,
	}

	deptIndex := make(map[string]int)
	yearCounts := make(map[int]int)
	for _, record := range records {
		if !record.IsActive {
			continue
		}
		stats.Total++
		if record.IsVerified {
			stats.VerifiedCount++
		}
		if record.CurrentCompany != "" {
			stats.EmployedCount++
		}
		if idx, ok := deptIndex[record.Department]; ok {
			stats.ByDepartment[idx].Count++
		} else {
			deptIndex[record.Department] = len(stats.ByDepartment)
			stats.ByDepartment = append(stats.ByDepartment, dto.DepartmentCount{Department: record.Department, Count: 1})
		}
		yearCounts[record.GraduationYear]++
	}

	if stats.Total > 0 {
		stats.EmploymentRate = roundOneDecimal(float64(stats.EmployedCount) / float64(stats.Total) * 100)
	}
	stats.EmploymentRateText = strconv.FormatFloat(stats.EmploymentRate, 'f', 1, 64)

	denominator := len(records)
	if base == dto.PercentBaseActive {
		denominator = stats.Total
	}

	// first-seen order breaks count ties
	sort.SliceStable(stats.ByDepartment, func(i, j int) bool {
		return stats.ByDepartment[i].Count > stats.ByDepartment[j].Count
	})
	for i := range stats.ByDepartment {
		stats.ByDepartment[i].Percentage = percentage(stats.ByDepartment[i].Count, denominator)
	}

	years := make([]int, 0, len(yearCounts))
	for year := range yearCounts {
		years = append(years, year)
	}
	sortYearsDesc(years)
	if len(years) > topYears {
		years = years[:topYears]
	}
	for _, year := range years {
		stats.ByYear = append(stats.ByYear, dto.YearCount{
			Year:       year,
			Count:      yearCounts[year],
			Percentage: percentage(yearCounts[year], denominator),
		})
	}

	return stats
}

func percentage(count, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return roundOneDecimal(float64(count) / float64(denominator) * 100)
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func sortYearsDesc(years []int) {
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })
}
