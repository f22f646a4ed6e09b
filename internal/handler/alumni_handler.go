package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-hub-api/internal/middleware"
	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/service"
	appErrors "github.com/noah-isme/alumni-hub-api/pkg/errors"
	"github.com/noah-isme/alumni-hub-api/pkg/response"
)

type alumniService interface {
	List(activeOnly bool) []models.Alumni
	Search(filter models.AlumniFilter) []models.Alumni
	Get(id string) (*models.Alumni, error)
	FilterOptions() models.AlumniFilterOptions
	Add(ctx context.Context, input service.AlumniInput, role models.UserRole) (*service.AlumniResult, error)
	Edit(ctx context.Context, id string, input service.AlumniInput, role models.UserRole) (*service.AlumniResult, error)
	SoftDelete(ctx context.Context, id string, role models.UserRole) (*service.DeleteResult, error)
	ToggleVerification(ctx context.Context, id string, role models.UserRole) (*service.AlumniResult, error)
	ImportCSV(ctx context.Context, raw string, role models.UserRole) (*service.ImportResult, error)
	ExportCSV(activeOnly bool, role models.UserRole) (string, error)
	ExportPDF(activeOnly bool, role models.UserRole) ([]byte, error)
}

// AlumniHandler exposes alumni directory endpoints.
type AlumniHandler struct {
	alumni         alumniService
	importMaxBytes int64
	now            func() time.Time
}

// NewAlumniHandler constructs AlumniHandler. importMaxBytes <= 0 falls back to 5 MiB.
func NewAlumniHandler(alumni alumniService, importMaxBytes int64) *AlumniHandler {
	if importMaxBytes <= 0 {
		importMaxBytes = 5 << 20
	}
	return &AlumniHandler{alumni: alumni, importMaxBytes: importMaxBytes, now: time.Now}
}

// List godoc
// @Summary List or search alumni
// @Description Any filter switches to search over active records. includeInactive is honoured without filters and for administrators only.
// @Tags Alumni
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email or company"
// @Param department query string false "Exact department"
// @Param year query int false "Exact graduation year"
// @Param verified query bool false "Verification state"
// @Param includeInactive query bool false "Include soft-deleted records"
// @Success 200 {object} response.Envelope
// @Router /alumni [get]
func (h *AlumniHandler) List(c *gin.Context) {
	filter, filtered, err := parseAlumniFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var records []models.Alumni
	if filtered {
		records = h.alumni.Search(filter)
	} else {
		includeInactive := c.Query("includeInactive") == "true"
		if includeInactive && !roleFromContext(c).IsAdmin() {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, ""))
			return
		}
		records = h.alumni.List(!includeInactive)
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"count": len(records)})
}

// Filters godoc
// @Summary Department and graduation year options
// @Tags Alumni
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /alumni/filters [get]
func (h *AlumniHandler) Filters(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.alumni.FilterOptions())
}

// Get godoc
// @Summary Get alumni detail
// @Tags Alumni
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alumni ID"
// @Success 200 {object} response.Envelope
// @Router /alumni/{id} [get]
func (h *AlumniHandler) Get(c *gin.Context) {
	record, err := h.alumni.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Add alumni
// @Tags Alumni
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AlumniInput true "Alumni payload"
// @Success 201 {object} response.Envelope
// @Router /alumni [post]
func (h *AlumniHandler) Create(c *gin.Context) {
	var input service.AlumniInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := h.alumni.Add(c.Request.Context(), input, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result.Alumni, mutationMeta(c, result.Message, result.Warning))
}

// Update godoc
// @Summary Replace alumni fields
// @Tags Alumni
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alumni ID"
// @Param payload body service.AlumniInput true "Alumni payload"
// @Success 200 {object} response.Envelope
// @Router /alumni/{id} [put]
func (h *AlumniHandler) Update(c *gin.Context) {
	var input service.AlumniInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := h.alumni.Edit(c.Request.Context(), c.Param("id"), input, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := mutationMeta(c, result.Message, result.Warning)
	meta["verification_changed"] = result.VerificationChanged()
	response.JSON(c, http.StatusOK, result.Alumni, meta)
}

// Delete godoc
// @Summary Soft delete alumni
// @Tags Alumni
// @Security BearerAuth
// @Param id path string true "Alumni ID"
// @Success 204
// @Router /alumni/{id} [delete]
func (h *AlumniHandler) Delete(c *gin.Context) {
	result, err := h.alumni.SoftDelete(c.Request.Context(), c.Param("id"), roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Warning != nil {
		response.JSON(c, http.StatusOK, result, mutationMeta(c, "", result.Warning))
		return
	}
	response.NoContent(c)
}

// ToggleVerification godoc
// @Summary Flip the verification flag
// @Tags Alumni
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alumni ID"
// @Success 200 {object} response.Envelope
// @Router /alumni/{id}/verification [post]
func (h *AlumniHandler) ToggleVerification(c *gin.Context) {
	result, err := h.alumni.ToggleVerification(c.Request.Context(), c.Param("id"), roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Alumni, mutationMeta(c, result.Message, result.Warning))
}

// Import godoc
// @Summary Import alumni from CSV
// @Description Accepts a multipart "file" field or a raw text/csv body. Values must not contain commas.
// @Tags Alumni
// @Accept mpfd
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Param file formData file false "CSV file"
// @Success 200 {object} response.Envelope
// @Router /alumni/import [post]
func (h *AlumniHandler) Import(c *gin.Context) {
	if !roleFromContext(c).IsAdmin() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, ""))
		return
	}
	raw, err := h.readImportBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.alumni.ImportCSV(c.Request.Context(), raw, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, mutationMeta(c, result.Message, result.Warning))
}

// ExportCSV godoc
// @Summary Export alumni as CSV
// @Tags Alumni
// @Produce text/csv
// @Security BearerAuth
// @Param includeInactive query bool false "Include soft-deleted records"
// @Success 200 {file} file
// @Router /alumni/export [get]
func (h *AlumniHandler) ExportCSV(c *gin.Context) {
	out, err := h.alumni.ExportCSV(c.Query("includeInactive") != "true", roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "text/csv; charset=utf-8", service.ExportFilename(h.now(), "csv"), []byte(out))
}

// ExportPDF godoc
// @Summary Export alumni directory as PDF
// @Tags Alumni
// @Produce application/pdf
// @Security BearerAuth
// @Param includeInactive query bool false "Include soft-deleted records"
// @Success 200 {file} file
// @Router /alumni/export.pdf [get]
func (h *AlumniHandler) ExportPDF(c *gin.Context) {
	out, err := h.alumni.ExportPDF(c.Query("includeInactive") != "true", roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", service.ExportFilename(h.now(), "pdf"), out)
}

func (h *AlumniHandler) readImportBody(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.importMaxBytes)

	var reader io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "csv file too large")
			}
			return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
		}
		file, err := header.Open()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
		}
		defer file.Close()
		reader = file
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		if isTooLarge(err) {
			return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "csv file too large")
		}
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read csv")
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "csv is empty")
	}
	return string(body), nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func parseAlumniFilter(c *gin.Context) (models.AlumniFilter, bool, error) {
	filter := models.AlumniFilter{
		Text:       strings.TrimSpace(c.Query("search")),
		Department: strings.TrimSpace(c.Query("department")),
	}
	filtered := filter.Text != "" || filter.Department != ""

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filter, false, appErrors.Clone(appErrors.ErrValidation, "year must be a number")
		}
		filter.GraduationYear = &year
		filtered = true
	}
	if raw := strings.TrimSpace(c.Query("verified")); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, false, appErrors.Clone(appErrors.ErrValidation, "verified must be true or false")
		}
		filter.Verified = &verified
		filtered = true
	}
	return filter, filtered, nil
}

func mutationMeta(c *gin.Context, message string, warning *appErrors.StorageWarning) map[string]interface{} {
	middleware.SetStorageWarning(c, warning)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	if message != "" {
		meta["message"] = message
	}
	return meta
}
