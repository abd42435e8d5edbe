package httpapi

import (
	"net/http"

	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListPresets(c *gin.Context) {
	items := s.presetUC.List(c.Request.Context(), currentUserID(c))
	if items == nil {
		items = []journal.FilterPreset{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "presets": items})
}

func (s *Server) handleSavePreset(c *gin.Context) {
	var preset journal.FilterPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	if err := s.presetUC.Save(c.Request.Context(), currentUserID(c), preset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "error_code": errCodeBadRequest})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeletePreset(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "preset name required", "error_code": errCodeBadRequest})
		return
	}
	s.presetUC.Delete(c.Request.Context(), currentUserID(c), name)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
