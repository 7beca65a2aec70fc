package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/givecycle/givecycle/internal/application"
	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/pkg/response"
	"github.com/givecycle/givecycle/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type contactRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type createUserRequest struct {
	Name        string         `json:"name" binding:"required"`
	DateOfBirth string         `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Contact     contactRequest `json:"contact" binding:"required"`
	Password    string         `json:"password" binding:"required,pwd"`
}

type updateContactRequest struct {
	Contact contactRequest `json:"contact" binding:"required"`
}

type userResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DateOfBirth string         `json:"date_of_birth"`
	Contact     entity.Contact `json:"contact"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		DateOfBirth: u.DateOfBirth,
		Contact:     u.Contact,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Contact: entity.Contact{
			Email: req.Contact.Email,
			Phone: req.Contact.Phone,
			City:  req.Contact.City,
		},
		Password: req.Password,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), "User created successfully with ID: "+u.ID, nil)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	response.Success(c, http.StatusOK, out, "users", nil)
}

func (h *UserHandler) UpdateContact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateContact(c.Request.Context(), id, entity.Contact{
		Email: req.Contact.Email,
		Phone: req.Contact.Phone,
		City:  req.Contact.City,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "contact updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
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
