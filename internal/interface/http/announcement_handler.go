package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/givecycle/givecycle/internal/application"
	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/pkg/helpers"
	"github.com/givecycle/givecycle/pkg/response"
	"github.com/givecycle/givecycle/pkg/validation"
)

type AnnouncementHandler struct {
	Svc    *application.AnnouncementService
	Logger *logrus.Logger
}

func NewAnnouncementHandler(svc *application.AnnouncementService, logger *logrus.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{Svc: svc, Logger: logger}
}

type createAnnouncementRequest struct {
	DonorID            string `json:"donor_id" binding:"required,hexid"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	ProductPhotoURL    string `json:"product_photo_url"`
	ProductCategory    string `json:"product_category"`
}

type updateAnnouncementRequest struct {
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	ProductPhotoURL    string `json:"product_photo_url"`
	ProductCategory    string `json:"product_category"`
}

type announcementResponse struct {
	ID        string         `json:"id"`
	Product   entity.Product `json:"product"`
	DonorID   string         `json:"donor_id"`
	DoneeID   string         `json:"donee_id,omitempty"`
	Claimed   bool           `json:"claimed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toAnnouncementResponse(a *entity.Announcement) announcementResponse {
	return announcementResponse{
		ID:        a.ID,
		Product:   a.Product,
		DonorID:   a.DonorID,
		DoneeID:   a.DoneeID,
		Claimed:   a.IsClaimed(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAnnouncementResponses(list []*entity.Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementResponse(a))
	}
	return out
}

// pathID validates a 24-hex path parameter, writing a 400 and returning false
// on a malformed value.
func pathID(c *gin.Context, param string) (string, bool) {
	id := c.Param(param)
	if !helpers.IsObjectID(id) {
		response.Error[any](c, http.StatusBadRequest, "Invalid ID format", nil)
		return "", false
	}
	return id, true
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.Create(c.Request.Context(), req.DonorID, application.ProductInput{
		Name:        req.ProductName,
		Description: req.ProductDescription,
		PhotoURL:    req.ProductPhotoURL,
		Category:    req.ProductCategory,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toAnnouncementResponse(a), "Announcement created successfully with ID: "+a.ID, nil)
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponse(a), "announcement", nil)
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponses(list), "announcements", nil)
}

func (h *AnnouncementHandler) ListByDonor(c *gin.Context) {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return
	}
	list, err := h.Svc.ListByDonor(c.Request.Context(), donorID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponses(list), "announcements by donor", nil)
}

func (h *AnnouncementHandler) ListByDonee(c *gin.Context) {
	doneeID, ok := pathID(c, "doneeId")
	if !ok {
		return
	}
	list, err := h.Svc.ListByDonee(c.Request.Context(), doneeID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponses(list), "announcements by donee", nil)
}

func (h *AnnouncementHandler) ListByDonorAndDonee(c *gin.Context) {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return
	}
	doneeID, ok := pathID(c, "doneeId")
	if !ok {
		return
	}
	list, err := h.Svc.ListByDonorAndDonee(c.Request.Context(), donorID, doneeID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponses(list), "announcements by donor and donee", nil)
}

func (h *AnnouncementHandler) ListUnclaimed(c *gin.Context) {
	exclude := c.Query("exclude_donor")
	if exclude != "" && !helpers.IsObjectID(exclude) {
		response.Error[any](c, http.StatusBadRequest, "Invalid ID format", nil)
		return
	}
	list, err := h.Svc.ListUnclaimed(c.Request.Context(), exclude)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponses(list), "unclaimed announcements", nil)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.UpdateProduct(c.Request.Context(), id, application.ProductInput{
		Name:        req.ProductName,
		Description: req.ProductDescription,
		PhotoURL:    req.ProductPhotoURL,
		Category:    req.ProductCategory,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponse(a), "announcement updated", nil)
}

func (h *AnnouncementHandler) Claim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doneeID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	a, err := h.Svc.Claim(c.Request.Context(), id, doneeID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponse(a), "announcement claimed", nil)
}

func (h *AnnouncementHandler) UndoClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Svc.UndoClaim(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnnouncementHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *AnnouncementHandler) UploadPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing photo file", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable photo file", nil)
		return
	}
	defer func() { _ = src.Close() }()

	a, err := h.Svc.AttachPhoto(c.Request.Context(), id, src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAnnouncementResponse(a), "photo uploaded", nil)
}
