package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yla-umzug/quotes-service/internal/service"
)

func (h *Handler) listSettings(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	settings, err := h.admin.ListSettings(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

func (h *Handler) updateSetting(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.SettingInput
	if !h.bindJSON(c, &in) {
		return
	}
	setting, err := h.admin.SetSetting(c.Request.Context(), c.Param("group"), c.Param("key"), in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "setting": setting})
}

func (h *Handler) listServices(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	services, err := h.admin.ListServices(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "services": services})
}

func (h *Handler) createService(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.ServiceInput
	if !h.bindJSON(c, &in) {
		return
	}
	svc, err := h.admin.CreateService(c.Request.Context(), in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "service": svc})
}

func (h *Handler) updateService(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var in service.ServiceInput
	if !h.bindJSON(c, &in) {
		return
	}
	svc, err := h.admin.UpdateService(c.Request.Context(), id, in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "service": svc})
}

func (h *Handler) listRules(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	rules, err := h.admin.ListRules(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rules": rules})
}

func (h *Handler) createRule(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.RuleInput
	if !h.bindJSON(c, &in) {
		return
	}
	rule, err := h.admin.CreateRule(c.Request.Context(), in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "rule": rule})
}

func (h *Handler) updateRule(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var in service.RuleInput
	if !h.bindJSON(c, &in) {
		return
	}
	rule, err := h.admin.UpdateRule(c.Request.Context(), id, in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rule": rule})
}

func (h *Handler) deleteRule(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteRule(c.Request.Context(), id, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
