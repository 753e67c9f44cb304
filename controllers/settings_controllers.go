package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

// SettingsStore is the persisted part of the settings screen.
type SettingsStore interface {
	SelectedPrinter() string
	SetSelectedPrinter(name string) error
	ServerURL() string
	SetServerURL(url string) error
}

// BackendTarget is the REST client whose base url follows the server setting.
type BackendTarget interface {
	SetBaseURL(base string)
	BaseURL() string
}

type SettingsController struct {
	Store            SettingsStore
	Backend          BackendTarget
	DefaultServerURL string
}

func NewSettingsController(store SettingsStore, backend BackendTarget, defaultServerURL string) *SettingsController {
	return &SettingsController{Store: store, Backend: backend, DefaultServerURL: defaultServerURL}
}

type settingsView struct {
	SelectedPrinter string `json:"selectedPrinter"`
	ServerURL       string `json:"serverUrl"`
	DefaultURL      string `json:"defaultServerUrl"`
}

// settingsRequest: absent fields stay unchanged, an empty serverUrl restores the default.
type settingsRequest struct {
	SelectedPrinter *string `json:"selectedPrinter"`
	ServerURL       *string `json:"serverUrl"`
}

var errInvalidServerURL = &services.ValidationError{Message: "Server manzili noto'g'ri"}

func (sc *SettingsController) view() settingsView {
	return settingsView{
		SelectedPrinter: sc.Store.SelectedPrinter(),
		ServerURL:       sc.Backend.BaseURL(),
		DefaultURL:      sc.DefaultServerURL,
	}
}

// GetSettings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Sozlamalar", sc.view())
}

// UpdateSettings
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}

	if req.ServerURL != nil {
		raw := strings.TrimRight(strings.TrimSpace(*req.ServerURL), "/")
		if raw != "" && !validServerURL(raw) {
			utils.RespondError(c, http.StatusBadRequest, errInvalidServerURL)
			return
		}
		if err := sc.Store.SetServerURL(raw); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if raw == "" {
			raw = sc.DefaultServerURL
		}
		sc.Backend.SetBaseURL(raw)
		utils.InfoLogger.WithField("server_url", raw).Info("Backend server changed")
	}

	if req.SelectedPrinter != nil {
		if err := sc.Store.SetSelectedPrinter(*req.SelectedPrinter); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.InfoLogger.WithFields(logrus.Fields{"printer": *req.SelectedPrinter}).Info("Printer selected")
	}

	utils.RespondJSON(c, http.StatusOK, "Sozlamalar saqlandi", sc.view())
}

func validServerURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
