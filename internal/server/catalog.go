package server

import (
	"net/http"

	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListServiceTypes(c *gin.Context) {
	types, err := s.catalogSvc.ListServiceTypes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, types)
}

func (s *Server) ListPackages(c *gin.Context) {
	packages, err := s.catalogSvc.ListPackages(c.Request.Context(), c.Param("service_type"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, packages)
}

func (s *Server) ListPackagePrices(c *gin.Context) {
	prices, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, prices)
}

func (s *Server) CreatePackagePrice(c *gin.Context) {
	var req catalogdomain.CreatePackagePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, price)
}

func (s *Server) UpdatePackagePrice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req catalogdomain.UpdatePackagePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.catalogSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, price)
}

func (s *Server) DeletePackagePrice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.catalogSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
