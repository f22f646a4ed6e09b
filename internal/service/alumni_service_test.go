package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-hub-api/internal/dto"
	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/repository"
	appErrors "github.com/noah-isme/alumni-hub-api/pkg/errors"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
)

type mockAlumniRepo struct {
	loadRecords []models.Alumni
	loadErr     error
	saveErr     error
	saved       [][]models.Alumni
	clearCalls  int
}

func (m *mockAlumniRepo) Load(ctx context.Context) ([]models.Alumni, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadRecords, nil
}

func (m *mockAlumniRepo) Save(ctx context.Context, records []models.Alumni) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	snapshot := make([]models.Alumni, len(records))
	copy(snapshot, records)
	m.saved = append(m.saved, snapshot)
	return nil
}

func (m *mockAlumniRepo) Clear(ctx context.Context) error {
	m.clearCalls++
	return nil
}

type mockInvalidator struct {
	patterns []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestAlumniService(repo alumniRepository, cfg AlumniServiceConfig) (*AlumniService, *testClock) {
	clock := &testClock{current: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewAlumniService(AlumniServiceParams{Repo: repo, Logger: zap.NewNop(), Config: cfg})
	svc.now = clock.Now
	return svc, clock
}

func validInput(first, last string) AlumniInput {
	cgpa := 8.2
	return AlumniInput{
		FirstName:       first,
		LastName:        last,
		Email:           strings.ToLower(first) + "@example.com",
		Phone:           "+15550001",
		StudentID:       "2019CS010",
		Department:      "Computer Science",
		GraduationYear:  2023,
		Batch:           "2019-2023",
		Degree:          "B.Tech",
		CGPA:            &cgpa,
		CurrentJobTitle: "Engineer",
		CurrentCompany:  "Acme",
		Industry:        "Technology",
		WorkLocation:    "Remote",
		LinkedIn:        "https://linkedin.com/in/" + strings.ToLower(first),
	}
}

func record(id, first, company, dept string, year int, verified, active bool) models.Alumni {
	return models.Alumni{
		ID:             id,
		FirstName:      first,
		LastName:       "Tester",
		Email:          strings.ToLower(first) + "@example.com",
		Department:     dept,
		GraduationYear: year,
		CurrentCompany: company,
		IsVerified:     verified,
		IsActive:       active,
		DataSource:     models.DataSourceManual,
	}
}

func TestAlumniServiceLoadSeedsWhenNothingPersisted(t *testing.T) {
	repo := &mockAlumniRepo{loadErr: repository.ErrCollectionNotFound}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{SeedDemoData: true})

	require.NoError(t, svc.Load(context.Background()))

	list := svc.List(true)
	require.Len(t, list, 3)
	assert.Equal(t, "John", list[0].FirstName)
	assert.Equal(t, "Electronics", list[1].Department)
	assert.False(t, list[2].IsVerified)
	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0], 3)
}

func TestAlumniServiceLoadCorruptDataStartsEmptyWithoutSeeding(t *testing.T) {
	repo := &mockAlumniRepo{loadErr: fmt.Errorf("%w: unexpected end of JSON input", repository.ErrCollectionCorrupt)}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{SeedDemoData: true})

	require.NoError(t, svc.Load(context.Background()))

	assert.Empty(t, svc.List(false))
	assert.Empty(t, repo.saved)
}

func TestAlumniServiceLoadBackendFailure(t *testing.T) {
	repo := &mockAlumniRepo{loadErr: errors.New("connection refused")}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{SeedDemoData: true})

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestAlumniServiceLoadKeepsPersistedRecordsVerbatim(t *testing.T) {
	persisted := []models.Alumni{
		record("a", "Ann", "", "Physics", 2010, false, false),
		record("b", "Ben", "Acme", "Physics", 2011, true, true),
	}
	repo := &mockAlumniRepo{loadRecords: persisted}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{SeedDemoData: true})

	require.NoError(t, svc.Load(context.Background()))

	assert.Equal(t, persisted, svc.List(false))
	assert.Empty(t, repo.saved)
}

func TestAlumniServicePrivilegedOperationsRequireAdmin(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("a", "Ann", "Acme", "Physics", 2010, false, true)}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))
	before := svc.List(false)
	ctx := context.Background()

	_, err := svc.Add(ctx, validInput("Zed", "Guest"), models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.Edit(ctx, "a", validInput("Zed", "Guest"), models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.SoftDelete(ctx, "a", models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.ToggleVerification(ctx, "a", models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.ImportCSV(ctx, "h\nA,B,c@example.com", models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.ExportCSV(true, models.RoleGuest)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.ExportPDF(true, "")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	appErr := appErrors.FromError(err)
	assert.Equal(t, "administrators only", appErr.Message)
	assert.Equal(t, before, svc.List(false))
	assert.Empty(t, repo.saved)
}

func TestAlumniServiceAdd(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{}}
	invalidator := &mockInvalidator{}
	svc, clock := newTestAlumniService(repo, AlumniServiceConfig{})
	svc.cache = invalidator
	require.NoError(t, svc.Load(context.Background()))

	input := validInput("Ada", "Lovelace")
	input.IsVerified = true
	first, err := svc.Add(context.Background(), input, models.RoleAdmin)
	require.NoError(t, err)
	second, err := svc.Add(context.Background(), validInput("Alan", "Turing"), models.RoleAdmin)
	require.NoError(t, err)

	assert.NotEmpty(t, first.Alumni.ID)
	assert.NotEqual(t, first.Alumni.ID, second.Alumni.ID)
	assert.False(t, first.Alumni.IsVerified)
	assert.True(t, first.Alumni.IsActive)
	assert.Equal(t, models.DataSourceManual, first.Alumni.DataSource)
	assert.Equal(t, clock.current, first.Alumni.LastUpdated)
	assert.Equal(t, "Alumni added successfully!", first.Message)
	assert.Nil(t, first.Warning)

	list := svc.List(true)
	require.Len(t, list, 2)
	assert.Equal(t, "Ada", list[0].FirstName)
	assert.Equal(t, "Alan", list[1].FirstName)
	assert.Len(t, repo.saved, 2)
	// one for the load, one per persisted add
	assert.Equal(t, []string{dashboardCachePattern, dashboardCachePattern, dashboardCachePattern}, invalidator.patterns)
	assert.Equal(t, uint64(3), svc.Revision())
}

func TestAlumniServiceAddValidation(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	input := validInput("Ada", "Lovelace")
	input.Email = "not-an-email"
	_, err := svc.Add(context.Background(), input, models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	input = validInput("Ada", "Lovelace")
	bad := 11.0
	input.CGPA = &bad
	_, err = svc.Add(context.Background(), input, models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	input = validInput("", "Lovelace")
	_, err = svc.Add(context.Background(), input, models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Empty(t, svc.List(false))
}

func TestAlumniServiceEditReplacesFieldsAndReportsVerification(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("a", "Ann", "", "Physics", 2010, false, true)}}
	svc, clock := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))
	clock.Advance(time.Hour)

	input := validInput("Anna", "Karenina")
	input.IsVerified = true
	input.CGPA = nil
	res, err := svc.Edit(context.Background(), "a", input, models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "a", res.Alumni.ID)
	assert.Equal(t, "Anna", res.Alumni.FirstName)
	assert.Equal(t, "Computer Science", res.Alumni.Department)
	assert.Nil(t, res.Alumni.CGPA)
	assert.True(t, res.Alumni.IsVerified)
	assert.False(t, res.WasVerified)
	assert.True(t, res.VerificationChanged())
	assert.Equal(t, clock.current, res.Alumni.LastUpdated)
	assert.Equal(t, models.DataSourceManual, res.Alumni.DataSource)
	assert.Equal(t, "Anna Karenina's information has been updated successfully! (Marked as verified)", res.Message)

	input.IsVerified = true
	res, err = svc.Edit(context.Background(), "a", input, models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, res.VerificationChanged())
	assert.Equal(t, "Anna Karenina's information has been updated successfully!", res.Message)
}

func TestAlumniServiceEditRejectsUnknownAndDeletedRecords(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("gone", "Ann", "", "Physics", 2010, false, false)}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	_, err := svc.Edit(context.Background(), "missing", validInput("A", "B"), models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Edit(context.Background(), "gone", validInput("A", "B"), models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.ToggleVerification(context.Background(), "gone", models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.saved)
}

func TestAlumniServiceSoftDelete(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{
		record("a", "Ann", "", "Physics", 2010, false, true),
		record("b", "Ben", "", "Physics", 2011, false, true),
	}}
	svc, clock := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))
	clock.Advance(time.Minute)

	res, err := svc.SoftDelete(context.Background(), "a", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	for _, r := range svc.List(true) {
		assert.NotEqual(t, "a", r.ID)
	}
	all := svc.List(false)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.False(t, all[0].IsActive)
	assert.Equal(t, clock.current, all[0].LastUpdated)
	require.Len(t, repo.saved, 1)

	_, err = svc.Get("a")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	clock.Advance(time.Minute)
	res, err = svc.SoftDelete(context.Background(), "a", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Len(t, repo.saved, 1)
	assert.NotEqual(t, clock.current, svc.List(false)[0].LastUpdated)

	_, err = svc.SoftDelete(context.Background(), "missing", models.RoleAdmin)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAlumniServiceToggleVerificationIsItsOwnInverse(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("a", "Ann", "", "Physics", 2010, false, true)}}
	svc, clock := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	clock.Advance(time.Minute)
	first, err := svc.ToggleVerification(context.Background(), "a", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, first.Alumni.IsVerified)
	assert.Equal(t, clock.current, first.Alumni.LastUpdated)
	assert.Equal(t, "Ann Tester has been verified!", first.Message)

	clock.Advance(time.Minute)
	second, err := svc.ToggleVerification(context.Background(), "a", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, second.Alumni.IsVerified)
	assert.Equal(t, clock.current, second.Alumni.LastUpdated)
	assert.Equal(t, "Ann Tester has been marked as unverified.", second.Message)
	assert.Len(t, repo.saved, 2)
}

func TestAlumniServiceSearch(t *testing.T) {
	year := 2022
	verified := true
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{
		record("john", "John", "", "Computer Science", 2022, true, true),
		record("mary", "Mary", "Johnson Inc", "Electronics", 2021, false, true),
		record("ghost", "Johnny", "", "Computer Science", 2022, true, false),
		record("zoe", "Zoe", "Acme", "Computer Science", 2020, false, true),
	}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	ids := func(records []models.Alumni) []string {
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"john", "mary"}, ids(svc.Search(models.AlumniFilter{Text: "john"})))
	assert.Equal(t, []string{"john", "mary", "zoe"}, ids(svc.Search(models.AlumniFilter{Text: "  "})))
	assert.Equal(t, []string{"john", "zoe"}, ids(svc.Search(models.AlumniFilter{Department: "Computer Science"})))
	assert.Equal(t, []string{"john"}, ids(svc.Search(models.AlumniFilter{GraduationYear: &year})))
	assert.Equal(t, []string{"john"}, ids(svc.Search(models.AlumniFilter{Verified: &verified})))
	assert.Equal(t, []string{"zoe"}, ids(svc.Search(models.AlumniFilter{Text: "ACME", Department: "Computer Science"})))
	assert.Empty(t, svc.Search(models.AlumniFilter{Text: "nobody"}))
	assert.NotNil(t, svc.Search(models.AlumniFilter{Text: "nobody"}))
}

func TestAlumniServiceAggregateEmpty(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("a", "Ann", "Acme", "Physics", 2010, true, false)}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	stats := svc.Aggregate()
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, float64(0), stats.EmploymentRate)
	assert.Empty(t, stats.ByDepartment)
	assert.Empty(t, stats.ByYear)
}

func TestAlumniServiceAggregateEmploymentRate(t *testing.T) {
	records := make([]models.Alumni, 0, 10)
	for i := 0; i < 10; i++ {
		company := ""
		if i < 7 {
			company = "Acme"
		}
		records = append(records, record(fmt.Sprintf("r%d", i), "R", company, "Physics", 2020, i%2 == 0, true))
	}
	repo := &mockAlumniRepo{loadRecords: records}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	stats := svc.Aggregate()
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 5, stats.VerifiedCount)
	assert.Equal(t, 7, stats.EmployedCount)
	assert.Equal(t, 70.0, stats.EmploymentRate)
	assert.Equal(t, "70.0", stats.EmploymentRateText)
}

func TestAlumniServiceAggregatePercentBase(t *testing.T) {
	records := []models.Alumni{
		record("a", "A", "", "Computer Science", 2021, false, true),
		record("b", "B", "", "Electronics", 2019, false, true),
		record("c", "C", "", "Computer Science", 2020, false, true),
		record("d", "D", "", "Mechanical", 2018, false, true),
		record("e", "E", "", "Computer Science", 2017, false, false),
	}

	repo := &mockAlumniRepo{loadRecords: records}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	stats := svc.Aggregate()
	assert.Equal(t, dto.PercentBaseCollection, stats.PercentBase)
	require.Len(t, stats.ByDepartment, 3)
	assert.Equal(t, dto.DepartmentCount{Department: "Computer Science", Count: 2, Percentage: 40}, stats.ByDepartment[0])
	assert.Equal(t, dto.DepartmentCount{Department: "Electronics", Count: 1, Percentage: 20}, stats.ByDepartment[1])
	assert.Equal(t, dto.DepartmentCount{Department: "Mechanical", Count: 1, Percentage: 20}, stats.ByDepartment[2])

	activeSvc, _ := newTestAlumniService(&mockAlumniRepo{loadRecords: records}, AlumniServiceConfig{PercentBase: dto.PercentBaseActive})
	require.NoError(t, activeSvc.Load(context.Background()))

	stats = activeSvc.Aggregate()
	assert.Equal(t, dto.PercentBaseActive, stats.PercentBase)
	assert.Equal(t, 50.0, stats.ByDepartment[0].Percentage)
	assert.Equal(t, 25.0, stats.ByYear[0].Percentage)
}

func TestAlumniServiceAggregateTopYears(t *testing.T) {
	records := make([]models.Alumni, 0, 8)
	for i, year := range []int{2015, 2021, 2016, 2020, 2017, 2019, 2018, 2021} {
		records = append(records, record(fmt.Sprintf("r%d", i), "R", "", "Physics", year, false, true))
	}
	svc, _ := newTestAlumniService(&mockAlumniRepo{loadRecords: records}, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	stats := svc.Aggregate()
	require.Len(t, stats.ByYear, 5)
	years := make([]int, 0, 5)
	for _, y := range stats.ByYear {
		years = append(years, y.Year)
	}
	assert.Equal(t, []int{2021, 2020, 2019, 2018, 2017}, years)
	assert.Equal(t, 2, stats.ByYear[0].Count)
	assert.Equal(t, 25.0, stats.ByYear[0].Percentage)
}

func TestAlumniServiceImportCSV(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{}}
	svc, clock := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	raw := "firstName,lastName,email,studentId,department,graduationYear,batch,degree,phone,currentCompany,currentJobTitle\n" +
		"Ada,Lovelace,ada@example.com,2017CS042,Computer Science,2021,2017-2021,B.Sc,+100,Analytical Engines,Engineer"
	res, err := svc.ImportCSV(context.Background(), raw, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Nil(t, res.Warning)

	list := svc.List(true)
	require.Len(t, list, 1)
	got := list[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "2017CS042", got.StudentID)
	assert.Equal(t, "Computer Science", got.Department)
	assert.Equal(t, 2021, got.GraduationYear)
	assert.Equal(t, "2017-2021", got.Batch)
	assert.Equal(t, "B.Sc", got.Degree)
	assert.Equal(t, "+100", got.Phone)
	assert.Equal(t, "Analytical Engines", got.CurrentCompany)
	assert.Equal(t, "Engineer", got.CurrentJobTitle)
	assert.Equal(t, models.DataSourceImport, got.DataSource)
	assert.False(t, got.IsVerified)
	assert.True(t, got.IsActive)
	assert.Equal(t, clock.current, got.LastUpdated)
	assert.Len(t, repo.saved, 1)
}

func TestAlumniServiceImportCSVDefaults(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	raw := "header\r\n" +
		"Short,Row\r\n" +
		"\r\n" +
		"Year,Text,y@example.com,S1,Physics,soon,,,\r\n" +
		"Lead,Digits,l@example.com,S2,Physics,2019abc\r\n" +
		"Zero,Year,z@example.com,S3,Physics,0,b,M.Tech"
	res, err := svc.ImportCSV(context.Background(), raw, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Imported)

	list := svc.List(true)
	require.Len(t, list, 4)
	assert.Equal(t, "Row", list[0].LastName)
	assert.Equal(t, "", list[0].Email)
	assert.Equal(t, 2020, list[0].GraduationYear)
	assert.Equal(t, "B.Tech", list[0].Degree)
	assert.Equal(t, 2020, list[1].GraduationYear)
	assert.Equal(t, 2019, list[2].GraduationYear)
	assert.Equal(t, 2020, list[3].GraduationYear)
	assert.Equal(t, "M.Tech", list[3].Degree)
	assert.Equal(t, "", list[3].CurrentJobTitle)
}

func TestAlumniServiceExportCSV(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{
		record("a", "Ann", "Acme", "Physics", 2010, true, true),
		record("b", "Ben", "", "Physics", 2011, false, false),
	}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	out, err := svc.ExportCSV(true, models.RoleAdmin)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "firstName,lastName,email,studentId,department,graduationYear,batch,degree,phone,currentCompany,currentJobTitle,isVerified", lines[0])
	assert.Equal(t, "Ann,Tester,ann@example.com,,Physics,2010,,,,Acme,,true", lines[1])

	out, err = svc.ExportCSV(false, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestAlumniServiceExportImportRoundTrip(t *testing.T) {
	source, _ := newTestAlumniService(&mockAlumniRepo{loadRecords: []models.Alumni{}}, AlumniServiceConfig{})
	require.NoError(t, source.Load(context.Background()))
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		_, err := source.Add(context.Background(), validInput(name, "Example"), models.RoleAdmin)
		require.NoError(t, err)
	}

	out, err := source.ExportCSV(true, models.RoleAdmin)
	require.NoError(t, err)

	target, _ := newTestAlumniService(&mockAlumniRepo{loadRecords: []models.Alumni{}}, AlumniServiceConfig{})
	require.NoError(t, target.Load(context.Background()))
	res, err := target.ImportCSV(context.Background(), out, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)

	want := source.List(true)
	got := target.List(true)
	for i := range want {
		assert.Equal(t, want[i].FirstName, got[i].FirstName)
		assert.Equal(t, want[i].LastName, got[i].LastName)
		assert.Equal(t, want[i].Email, got[i].Email)
		assert.Equal(t, want[i].StudentID, got[i].StudentID)
		assert.Equal(t, want[i].Department, got[i].Department)
		assert.Equal(t, want[i].GraduationYear, got[i].GraduationYear)
		assert.Equal(t, want[i].Batch, got[i].Batch)
		assert.Equal(t, want[i].Degree, got[i].Degree)
		assert.Equal(t, want[i].Phone, got[i].Phone)
		assert.Equal(t, want[i].CurrentCompany, got[i].CurrentCompany)
		assert.Equal(t, want[i].CurrentJobTitle, got[i].CurrentJobTitle)
		assert.NotEqual(t, want[i].ID, got[i].ID)
	}
}

func TestAlumniServiceQuotaExceededKeepsMemoryAndClearsKey(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(64)
	require.NoError(t, store.Set(ctx, "alumniData", "[]"))
	metrics := NewMetricsService()

	svc := NewAlumniService(AlumniServiceParams{
		Repo:    repository.NewAlumniRepository(store, "alumniData"),
		Metrics: metrics,
		Config:  AlumniServiceConfig{SeedDemoData: true},
	})
	require.NoError(t, svc.Load(ctx))
	require.Empty(t, svc.List(false))

	res, err := svc.Add(ctx, validInput("Ada", "Lovelace"), models.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, appErrors.WarnQuotaExceeded, res.Warning.Code)
	assert.True(t, errors.Is(res.Warning, kvstore.ErrQuotaExceeded))

	_, ok, err := store.Get(ctx, "alumniData")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Len(t, svc.List(true), 1)
	toggled, err := svc.ToggleVerification(ctx, res.Alumni.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, toggled.Alumni.IsVerified)
	assert.NotNil(t, toggled.Warning)
}

func TestAlumniServicePersistFailureIsWarning(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{record("a", "Ann", "", "Physics", 2010, false, true)}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))
	repo.saveErr = errors.New("disk unplugged")

	res, err := svc.SoftDelete(context.Background(), "a", models.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, appErrors.WarnPersistFailed, res.Warning.Code)
	assert.Equal(t, 0, repo.clearCalls)
	assert.Empty(t, svc.List(true))
}

func TestAlumniServiceGetAndFilterOptions(t *testing.T) {
	repo := &mockAlumniRepo{loadRecords: []models.Alumni{
		record("a", "Ann", "", "Physics", 2010, false, true),
		record("b", "Ben", "", "Chemistry", 2014, false, true),
		record("c", "Cy", "", "Physics", 2012, false, false),
		record("d", "Di", "", "Biology", 2014, false, true),
	}}
	svc, _ := newTestAlumniService(repo, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	got, err := svc.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "Ben", got.FirstName)

	_, err = svc.Get("nope")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	options := svc.FilterOptions()
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology"}, options.Departments)
	assert.Equal(t, []int{2014, 2012, 2010}, options.Years)
}

func TestAlumniServiceListReturnsCopies(t *testing.T) {
	cgpa := 9.0
	seed := record("a", "Ann", "", "Physics", 2010, false, true)
	seed.CGPA = &cgpa
	svc, _ := newTestAlumniService(&mockAlumniRepo{loadRecords: []models.Alumni{seed}}, AlumniServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))

	list := svc.List(true)
	list[0].FirstName = "Mallory"
	*list[0].CGPA = 1

	again := svc.List(true)
	assert.Equal(t, "Ann", again[0].FirstName)
	assert.Equal(t, 9.0, *again[0].CGPA)
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "alumni_data_2024-03-09.csv", ExportFilename(ts, "csv"))
}
