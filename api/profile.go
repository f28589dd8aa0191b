package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/profile"
	"github.com/gin-gonic/gin"
)

// themeCookieMaxAge keeps the theme cookie for a year.
const themeCookieMaxAge = 365 * 24 * 60 * 60

type ProfileHandler struct {
	service profile.ProfileUseCase
}

func NewProfileHandler(service profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Register(router *gin.RouterGroup) {
	router.GET("/profile", RequireUser(), h.get)
	router.PUT("/profile/:id", h.update)
	router.GET("/preferences/theme", h.theme)
	router.PUT("/preferences/theme", h.setTheme)
}

func (h *ProfileHandler) get(c *gin.Context) {
	p, err := h.service.GetByEmail(c.Request.Context(), userEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) update(c *gin.Context) {
	var req profile.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type themePayload struct {
	Theme domain.Theme `json:"theme"`
}

// theme returns the stored preference for signed-in users and the cookie
// value for everyone else.
func (h *ProfileHandler) theme(c *gin.Context) {
	email := userEmail(c)
	if email == "" {
		c.JSON(http.StatusOK, themePayload{Theme: themeFromContext(c)})
		return
	}
	t, err := h.service.Theme(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, themePayload{Theme: t})
}

func (h *ProfileHandler) setTheme(c *gin.Context) {
	var req themePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Theme.Valid() {
		badRequest(c, "theme must be light or dark")
		return
	}
	if email := userEmail(c); email != "" {
		if err := h.service.SetTheme(c.Request.Context(), email, req.Theme); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, string(req.Theme), themeCookieMaxAge, "/", "", false, false)
	c.JSON(http.StatusOK, req)
}
