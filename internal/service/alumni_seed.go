package service

import (
	"time"

	"github.com/noah-isme/alumni-hub-api/internal/models"
)

// demoAlumni returns the records a brand-new store starts with.
func demoAlumni(now time.Time) []models.Alumni {
	cgpa := func(v float64) *float64 { return &v }
	return []models.Alumni{
		{
			ID:              newAlumniID(),
			FirstName:       "John",
			LastName:        "Doe",
			Email:           "john.doe@example.com",
			Phone:           "+1234567890",
			StudentID:       "2018CS001",
			Department:      "Computer Science",
			GraduationYear:  2022,
			Batch:           "2018-2022",
			Degree:          "B.Tech",
			CGPA:            cgpa(8.5),
			CurrentJobTitle: "Software Engineer",
			CurrentCompany:  "Tech Corp",
			Industry:        "Technology",
			WorkLocation:    "San Francisco, CA",
			LinkedIn:        "https://linkedin.com/in/johndoe",
			IsVerified:      true,
			IsActive:        true,
			DataSource:      models.DataSourceImport,
			LastUpdated:     now,
		},
		{
			ID:              newAlumniID(),
			FirstName:       "Jane",
			LastName:        "Smith",
			Email:           "jane.smith@example.com",
			Phone:           "+1234567891",
			StudentID:       "2019EC015",
			Department:      "Electronics",
			GraduationYear:  2023,
			Batch:           "2019-2023",
			Degree:          "B.Tech",
			CGPA:            cgpa(9.1),
			CurrentJobTitle: "Product Manager",
			CurrentCompany:  "Innovation Labs",
			Industry:        "Technology",
			WorkLocation:    "New York, NY",
			LinkedIn:        "https://linkedin.com/in/janesmith",
			IsVerified:      true,
			IsActive:        true,
			DataSource:      models.DataSourceSelfRegistration,
			LastUpdated:     now,
		},
		{
			ID:              newAlumniID(),
			FirstName:       "Michael",
			LastName:        "Johnson",
			Email:           "michael.j@example.com",
			Phone:           "+1234567892",
			StudentID:       "2017ME023",
			Department:      "Mechanical Engineering",
			GraduationYear:  2021,
			Batch:           "2017-2021",
			Degree:          "B.Tech",
			CGPA:            cgpa(7.8),
			CurrentJobTitle: "Design Engineer",
			CurrentCompany:  "AutoTech Solutions",
			Industry:        "Automotive",
			WorkLocation:    "Detroit, MI",
			IsVerified:      false,
			IsActive:        true,
			DataSource:      models.DataSourceManual,
			LastUpdated:     now,
		},
	}
}
