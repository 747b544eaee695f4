package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jpalmerr/queueboard/internal/engine"
	"github.com/jpalmerr/queueboard/internal/report"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type initializeRequest struct {
	NumServers *int `json:"numServers" binding:"required"`
}

type leaveRequest struct {
	ServerIndex *int `json:"serverIndex" binding:"required"`
}

var success = gin.H{"success": true}

func (s *Server) handleInitialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Initialize(*req.NumServers); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.logger.WithField("servers", *req.NumServers).Info("simulation initialized")
	c.JSON(http.StatusOK, success)
}

func (s *Server) handleEnter(c *gin.Context) {
	s.store.Arrive()
	c.JSON(http.StatusOK, success)
}

func (s *Server) handleLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Depart(*req.ServerIndex); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, success)
}

func (s *Server) handleStop(c *gin.Context) {
	s.store.Stop()
	s.logger.Info("simulation stopped")
	c.JSON(http.StatusOK, success)
}

func (s *Server) handleReset(c *gin.Context) {
	s.store.Reset()
	s.logger.Info("simulation reset")
	c.JSON(http.StatusOK, success)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, s.store.Status())
}

func (s *Server) handleSummary(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, s.store.Summary())
}

func (s *Server) handleDownloadCustomers(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteCustomers(&buf, s.store.Summary().CustomerSummary); err != nil {
		s.abortWithError(c, err)
		return
	}
	attachment(c, report.CustomersFilename, buf.Bytes())
}

func (s *Server) handleDownloadMetrics(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteMetrics(&buf, s.store.Summary().MetricsTable); err != nil {
		s.abortWithError(c, err)
		return
	}
	attachment(c, report.MetricsFilename, buf.Bytes())
}

func attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// abortWithError maps engine errors to 400 and everything else to 500.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrInvalidConfiguration) || errors.Is(err, engine.ErrIndexOutOfRange) {
		status = http.StatusBadRequest
	} else {
		s.logger.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
