package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wallsetting-api/internal/middleware"
	"github.com/noah-isme/wallsetting-api/internal/models"
	"github.com/noah-isme/wallsetting-api/internal/service"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
	"github.com/noah-isme/wallsetting-api/pkg/response"
)

type brandInfoService interface {
	List(ctx context.Context, filter models.BrandInfoFilter) ([]models.BrandInfo, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.BrandInfo, error)
	Create(ctx context.Context, req service.BrandInfoRequest) (*models.BrandInfo, error)
	Update(ctx context.Context, id string, req service.BrandInfoRequest) (*models.BrandInfo, error)
	Delete(ctx context.Context, id string) error
}

// BrandInfoHandler exposes brand profile endpoints.
type BrandInfoHandler struct {
	service brandInfoService
}

// NewBrandInfoHandler constructs the handler.
func NewBrandInfoHandler(svc brandInfoService) *BrandInfoHandler {
	return &BrandInfoHandler{service: svc}
}

// List godoc
// @Summary List brand profiles
// @Tags BrandsInfo
// @Produce json
// @Param search query string false "Match on name, brand or Korean name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name, brand, name_kr, created_at, updated_at)"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /brands_info [get]
func (h *BrandInfoHandler) List(c *gin.Context) {
	filter := models.BrandInfoFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = pagingFromQuery(c)

	brands, pagination, cacheHit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, brands, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get brand profile
// @Tags BrandsInfo
// @Produce json
// @Param id path string true "Brand ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /brands_info/{id} [get]
func (h *BrandInfoHandler) Get(c *gin.Context) {
	brand, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brand, nil)
}

// Create godoc
// @Summary Create brand profile
// @Tags BrandsInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BrandInfoRequest true "Brand payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /brands_info [post]
func (h *BrandInfoHandler) Create(c *gin.Context) {
	var req service.BrandInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	brand, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brand)
}

// Update godoc
// @Summary Update brand profile
// @Tags BrandsInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Brand ID"
// @Param payload body service.BrandInfoRequest true "Brand payload"
// @Success 200 {object} response.Envelope
// @Router /brands_info/{id} [put]
func (h *BrandInfoHandler) Update(c *gin.Context) {
	var req service.BrandInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	brand, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brand, nil)
}

// Delete godoc
// @Summary Delete brand profile
// @Tags BrandsInfo
// @Security BearerAuth
// @Param id path string true "Brand ID"
// @Success 204
// @Router /brands_info/{id} [delete]
func (h *BrandInfoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type profileImageService interface {
	Upload(ctx context.Context, brandID string, data []byte) (*service.ProfileImageResult, error)
	Open(brandID, token string) (io.ReadSeekCloser, error)
}

// ProfileImageHandler accepts brand profile uploads and serves signed downloads.
type ProfileImageHandler struct {
	service     profileImageService
	maxFileSize int64
}

// NewProfileImageHandler constructs the handler.
func NewProfileImageHandler(svc profileImageService, maxFileSize int64) *ProfileImageHandler {
	return &ProfileImageHandler{service: svc, maxFileSize: maxFileSize}
}

// Upload godoc
// @Summary Upload brand profile image
// @Tags BrandsInfo
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Brand ID"
// @Param file formData file true "JPEG, PNG or GIF image"
// @Success 202 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /brands_info/{id}/profile-image [post]
func (h *ProfileImageHandler) Upload(c *gin.Context) {
	if h.maxFileSize > 0 {
		// room for multipart framing around the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+1<<16)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}

	result, err := h.service.Upload(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Download godoc
// @Summary Download brand profile image
// @Tags BrandsInfo
// @Produce jpeg
// @Param id path string true "Brand ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /brands_info/{id}/profile-image [get]
func (h *ProfileImageHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.Open(c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, "profile.jpg", time.Time{}, file)
}
