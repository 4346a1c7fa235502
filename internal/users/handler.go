package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/server/middleware"
	"docsearch-backend/internal/shared/server/respond"
)

// Handler exposes registration, login and account management.
type Handler struct {
	Svc        *Service
	Gate       *auth.Gate
	LoginLimit gin.HandlerFunc
}

// NewHandler constructs a Handler. loginLimit may be nil.
func NewHandler(svc *Service, gate *auth.Gate, loginLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Gate: gate, LoginLimit: loginLimit}
}

// UserResponse is the public summary of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string    `json:"token"`
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	login := []gin.HandlerFunc{}
	if h.LoginLimit != nil {
		login = append(login, h.LoginLimit)
	}
	login = append(login, h.login)

	rg.POST("/users/register", h.register)
	rg.POST("/users/login", login...)
	rg.GET("/users", middleware.RequireSignedIn(h.Gate, auth.CapRead), h.list)
	rg.GET("/users/:username", middleware.RequireSignedIn(h.Gate, auth.CapRead), h.get)
	rg.DELETE("/users/:id", middleware.Require(h.Gate, auth.CapDelete), h.delete)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err, "failed to register user")
		return
	}
	respond.OK(c, toResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, "failed to sign in")
		return
	}
	respond.OK(c, loginResponse{
		Token:    res.Token,
		ID:       res.User.ID,
		Username: res.User.Username,
		Email:    res.User.Email,
		Role:     res.User.Role,
	})
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toResponse(u))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	user, err := h.Svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err, "failed to load user")
		return
	}
	respond.OK(c, toResponse(user))
}

func (h *Handler) delete(c *gin.Context) {
	if _, err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete user")
		return
	}
	respond.NoContent(c)
}

func toResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "username already exists", nil)
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid username or password", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
