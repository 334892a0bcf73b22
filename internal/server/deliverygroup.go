package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
)

func (s *Server) CreateDeliveryGroup(c *gin.Context) {
	var req struct {
		Members []groupdomain.MemberRef `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.groupSvc.Group(c.Request.Context(), req.Members)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetDeliveryGroup(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.groupSvc.Get(c.Request.Context(), groupID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDeliveryGroup(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.groupSvc.Ungroup(c.Request.Context(), groupID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
