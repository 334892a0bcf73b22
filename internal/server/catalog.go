package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListMealPackages(c *gin.Context) {
	items, err := s.catalogSvc.ListMealPackages(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListTokenPackages(c *gin.Context) {
	items, err := s.catalogSvc.ListTokenPackages(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListUpgradePrices(c *gin.Context) {
	items, err := s.catalogSvc.ListUpgradePriceRules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
