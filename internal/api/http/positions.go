package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

const htmlContentType = "text/html; charset=utf-8"

// ListPositions lists every populated position
func (h *Handlers) ListPositions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"positions": h.registry.Positions(),
		"stats":     h.registry.Stats(),
	})
}

// ListModules lists the modules at a position in render order
func (h *Handlers) ListModules(c *gin.Context) {
	name := c.Param("name")

	// Validate position name
	if err := utils.ValidatePosition(name); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"position": name,
		"modules":  h.registry.Entries(name),
	})
}

// RenderPosition renders the modules at a position as an HTML fragment
func (h *Handlers) RenderPosition(c *gin.Context) {
	name := c.Param("name")

	// Validate position name
	if err := utils.ValidatePosition(name); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	ctx, finish := h.span(c.Request.Context(), "render position", map[string]string{"position": name})
	out, err := h.engine.Fragment(ctx, name)
	finish(err)
	if err != nil {
		h.logger.Error("Failed to render position", append(tracing.Fields(ctx),
			zap.String("position", name),
			zap.Error(err),
		)...)
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	etag := h.hasher.ETag(string(out))
	c.Header("ETag", etag)
	if utils.MatchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, htmlContentType, []byte(out))
}
