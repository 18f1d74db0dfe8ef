package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSettings(c *gin.Context) {
	settings, err := s.settings.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, settings)
}

func (s *Server) SetSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	setting, err := s.settings.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, setting)
}

func (s *Server) DeleteSetting(c *gin.Context) {
	if err := s.settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
