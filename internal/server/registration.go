package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return 0, false
	}
	return id, true
}

func (s *Server) CreateRegistration(c *gin.Context) {
	var req registrationdomain.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reg, err := s.registrationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, reg)
}

func (s *Server) ListRegistrations(c *gin.Context) {
	var query struct {
		pagination.Pagination
		registrationdomain.ListFilter
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, err := s.registrationSvc.List(c.Request.Context(), query.ListFilter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pageInfo := pagination.BuildCursorPageInfo(items, query.PageSize, func(r *registrationdomain.Registration) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        r.ID.String(),
			CreatedAt: r.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})
	if pageInfo != nil && len(items) > query.PageSize {
		items = items[:query.PageSize]
	}
	respondList(c, items, pageInfo)
}

func (s *Server) GetRegistration(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	reg, err := s.registrationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, reg)
}

func (s *Server) UpdateRegistration(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req registrationdomain.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reg, err := s.registrationSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, reg)
}

func (s *Server) UpdateRegistrationStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status registrationdomain.RegistrationStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reg, err := s.registrationSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, reg)
}

func (s *Server) DeleteRegistration(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.registrationSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) RegistrationStats(c *gin.Context) {
	stats, err := s.registrationSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, stats)
}

func (s *Server) RegistrationInvoices(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	grouped, err := s.invoiceSvc.ByRegistration(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, grouped)
}
