package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSchedule(c *gin.Context) {
	days, err := s.scheduleSvc.Schedule(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": days})
}

func (s *Server) SetMealPaused(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Paused bool `json:"paused"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	meal, err := s.scheduleSvc.SetPaused(c.Request.Context(), mealID, req.Paused)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meal})
}

func (s *Server) GetMealAuditTrail(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := s.scheduleSvc.AuditTrail(c.Request.Context(), mealID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
