package dto

// PercentBase names the denominator used for department and year percentages.
type PercentBase string

const (
	// PercentBaseCollection divides by the full collection, inactive records included.
	PercentBaseCollection PercentBase = "collection"
	// PercentBaseActive divides by the number of active records.
	PercentBaseActive PercentBase = "active"
)

// DashboardStats captures the aggregated dashboard payload.
type DashboardStats struct {
	Total              int               `json:"total"`
	VerifiedCount      int               `json:"verifiedCount"`
	EmployedCount      int               `json:"employedCount"`
	EmploymentRate     float64           `json:"employmentRate"`
	EmploymentRateText string            `json:"employmentRateText"`
	ByDepartment       []DepartmentCount `json:"byDepartment"`
	ByYear             []YearCount       `json:"byYear"`
	PercentBase        PercentBase       `json:"percentBase"`
}

// DepartmentCount is one department bar of the dashboard.
type DepartmentCount struct {
	Department string  `json:"department"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// YearCount is one graduation-year bar of the dashboard.
type YearCount struct {
	Year       int     `json:"year"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
