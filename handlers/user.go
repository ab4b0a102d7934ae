package handlers

import (
	"net/http"

	userRepo "medbook/database/repository/user"
	"medbook/middleware"
	"medbook/models"
	"medbook/services/user"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves authentication, profile and user administration.
type UserHandler struct {
	Service user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Service: svc}
}

// RegisterUserHandler handles POST /users/register.
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to register user")
		return
	}
	getLogger(c).Info("User registered", zap.String("userId", u.ID))
	utils.JSONOK(c, http.StatusCreated, "Registration successful", u)
}

// AuthenticateUserHandler handles POST /users/login.
func (h *UserHandler) AuthenticateUserHandler(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to sign in")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Login successful", res)
}

// RevokeAuthTokenHandler handles POST /users/logout.
func (h *UserHandler) RevokeAuthTokenHandler(c *gin.Context) {
	token, exp := middleware.TokenFrom(c)
	if err := h.Service.Logout(c.Request.Context(), token, exp); err != nil {
		utils.RespondError(c, err, "Failed to sign out")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Logged out", nil)
}

// GetProfileHandler handles GET /users/details.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	profile, err := h.Service.Me(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		utils.RespondError(c, err, "Failed to retrieve profile")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", profile)
}

// UpdateProfileHandler handles PUT /users/details.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Service.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c).UserID, req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update profile")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Profile updated", u)
}

// GetAllUsersHandler handles GET /users (admin).
func (h *UserHandler) GetAllUsersHandler(c *gin.Context) {
	page, limit := utils.PageParams(c.Query("page"), c.Query("limit"))
	filter := userRepo.UserFilter{Role: c.Query("role"), Query: c.Query("q")}
	res, err := h.Service.ListUsers(c.Request.Context(), filter, page, limit)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch users")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}

// GetUserByIDHandler handles GET /users/:id (admin).
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	u, err := h.Service.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch user")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", u)
}

// CreateUserHandler handles POST /users (admin).
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	var req models.AdminUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Service.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create user")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "User created", u)
}

// UpdateUserHandler handles PUT /users/:id (admin).
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	var req models.AdminUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Service.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update user")
		return
	}
	utils.JSONOK(c, http.StatusOK, "User updated", u)
}

// DeleteUserHandler handles DELETE /users/:id (admin).
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteUser(c.Request.Context(), middleware.ActorFrom(c).UserID, id); err != nil {
		utils.RespondError(c, err, "Failed to delete user")
		return
	}
	getLogger(c).Info("User deleted", zap.String("userId", id))
	utils.JSONOK(c, http.StatusOK, "User deleted", nil)
}
