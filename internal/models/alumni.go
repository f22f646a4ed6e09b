package models

import "time"

// DataSource records how an alumni record entered the system.
type DataSource string

const (
	DataSourceManual           DataSource = "Manual"
	DataSourceImport           DataSource = "Import"
	DataSourceSelfRegistration DataSource = "Self-Registration"
)

// Alumni is one alumnus profile. The JSON layout is the persisted document format.
type Alumni struct {
	ID string `json:"id"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	StudentID      string   `json:"studentId"`
	Department     string   `json:"department"`
	GraduationYear int      `json:"graduationYear"`
	Batch          string   `json:"batch"`
	Degree         string   `json:"degree"`
	CGPA           *float64 `json:"cgpa"`

	CurrentJobTitle string `json:"currentJobTitle"`
	CurrentCompany  string `json:"currentCompany"`
	Industry        string `json:"industry"`
	WorkLocation    string `json:"workLocation"`
	LinkedIn        string `json:"linkedin"`

	IsVerified bool `json:"isVerified"`
	IsActive   bool `json:"isActive"`

	DataSource  DataSource `json:"dataSource"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// FullName joins first and last name for notification text.
func (a Alumni) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// AlumniFilter holds optional search criteria; nil or empty fields impose no constraint.
type AlumniFilter struct {
	Text           string
	Department     string
	GraduationYear *int
	Verified       *bool
}

// AlumniFilterOptions lists the values offered by directory filter dropdowns.
type AlumniFilterOptions struct {
	Departments []string `json:"departments"`
	Years       []int    `json:"years"`
}
