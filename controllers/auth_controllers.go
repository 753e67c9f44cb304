package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/middlewares"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type AuthController struct {
	Cashier *services.CashierService
}

func NewAuthController(cashier *services.CashierService) *AuthController {
	return &AuthController{Cashier: cashier}
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sessionView hides the backend token from the browser.
type sessionView struct {
	User       models.User       `json:"user"`
	Restaurant models.Restaurant `json:"restaurant"`
	ExpiresAt  interface{}       `json:"expiresAt"`
}

func newSessionView(s models.Session) sessionView {
	v := sessionView{User: s.User, Restaurant: s.Restaurant}
	if s.ExpiresAt != nil {
		v.ExpiresAt = s.ExpiresAt
	}
	return v
}

// Login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Message: "Telefon va parolni kiriting"})
		return
	}

	session, err := ac.Cashier.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Muvaffaqiyatli kirildi", newSessionView(session))
}

// Logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Cashier.Logout(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tizimdan chiqildi", nil)
}

// Me -> current session
func (ac *AuthController) Me(c *gin.Context) {
	session, ok := middlewares.CurrentSession(c)
	if !ok {
		respondServiceError(c, services.ErrNotLoggedIn)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sessiya", newSessionView(session))
}
