package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
)

func (s *Server) ApplyUpgrade(c *gin.Context) {
	var req upgradedomain.ApplyUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.upgradeSvc.Apply(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) RemoveUpgrade(c *gin.Context) {
	upgradeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.upgradeSvc.Remove(c.Request.Context(), upgradeID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
