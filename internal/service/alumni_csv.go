package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/pkg/export"
)

const (
	defaultImportYear   = 2020
	defaultImportDegree = "B.Tech"
)

// alumniCSVHeaders is the interchange column order. Import reads the first eleven positionally.
var alumniCSVHeaders = []string{
	"firstName", "lastName", "email", "studentId", "department", "graduationYear",
	"batch", "degree", "phone", "currentCompany", "currentJobTitle", "isVerified",
}

var alumniPDFHeaders = []string{"Name", "Student ID", "Email", "Department", "Year", "Company", "Job Title", "Status"}

// parseAlumniCSV turns every data line into an imported record. The header line is ignored.
func parseAlumniCSV(raw string, nextID func() string, now time.Time) []models.Alumni {
	_, rows := export.ParseCSV(raw)
	records := make([]models.Alumni, 0, len(rows))
	for _, values := range rows {
		field := func(i int) string {
			if i < len(values) {
				return values[i]
			}
			return ""
		}
		degree := field(7)
		if degree == "" {
			degree = defaultImportDegree
		}
		records = append(records, models.Alumni{
			ID:              nextID(),
			FirstName:       field(0),
			LastName:        field(1),
			Email:           field(2),
			StudentID:       field(3),
			Department:      field(4),
			GraduationYear:  parseImportYear(field(5)),
			Batch:           field(6),
			Degree:          degree,
			Phone:           field(8),
			CurrentCompany:  field(9),
			CurrentJobTitle: field(10),
			IsVerified:      false,
			IsActive:        true,
			DataSource:      models.DataSourceImport,
			LastUpdated:     now,
		})
	}
	return records
}

// parseImportYear reads the leading integer of value. Missing, non-numeric and zero years fall back to 2020.
func parseImportYear(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return defaultImportYear
	}
	year, err := strconv.Atoi(value[:end])
	if err != nil || year == 0 {
		return defaultImportYear
	}
	return year
}

func formatAlumniCSV(records []models.Alumni) (string, error) {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"firstName":       record.FirstName,
			"lastName":        record.LastName,
			"email":           record.Email,
			"studentId":       record.StudentID,
			"department":      record.Department,
			"graduationYear":  strconv.Itoa(record.GraduationYear),
			"batch":           record.Batch,
			"degree":          record.Degree,
			"phone":           record.Phone,
			"currentCompany":  record.CurrentCompany,
			"currentJobTitle": record.CurrentJobTitle,
			"isVerified":      strconv.FormatBool(record.IsVerified),
		})
	}
	out, err := export.NewCSVExporter().Render(export.Dataset{Headers: alumniCSVHeaders, Rows: rows})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func renderAlumniPDF(records []models.Alumni) ([]byte, error) {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		status := "Pending"
		if record.IsVerified {
			status = "Verified"
		}
		rows = append(rows, map[string]string{
			"Name":       record.FullName(),
			"Student ID": record.StudentID,
			"Email":      record.Email,
			"Department": record.Department,
			"Year":       strconv.Itoa(record.GraduationYear),
			"Company":    record.CurrentCompany,
			"Job Title":  record.CurrentJobTitle,
			"Status":     status,
		})
	}
	return export.NewPDFExporter().Render(export.Dataset{Headers: alumniPDFHeaders, Rows: rows}, "Alumni Directory")
}

// ExportFilename builds the download name for an export made at t, e.g. alumni_data_2024-05-01.csv.
func ExportFilename(t time.Time, ext string) string {
	return "alumni_data_" + t.UTC().Format("2006-01-02") + "." + ext
}
