package api

import (
	"net/http"

	adminlogin "hr-backoffice/internal/services/auth/admin-login"
	adminlogout "hr-backoffice/internal/services/auth/admin-logout"
	"hr-backoffice/pkg/registry"

	"github.com/gin-gonic/gin"
)

func (h *handlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", "", h.cfg.CookieSecure, true)
}

func (h *handlers) login(c *gin.Context) {
	var input adminlogin.Input
	if err := h.bindBody(c, registry.AdminLogin, &input); err != nil {
		h.errs.Respond(c, err)
		return
	}
	out, err := h.svc.Login.Execute(c.Request.Context(), &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	h.setSessionCookie(c, out.Token, int(h.cfg.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, out)
}

func (h *handlers) logout(c *gin.Context) {
	out, err := h.svc.Logout.Execute(c.Request.Context(), &adminlogout.Input{Token: c.GetString(ctxToken)})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, out)
}

func (h *handlers) dashboard(c *gin.Context) {
	stats, err := h.svc.Stats.Execute(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
