package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ytscribe/internal/services"
	"ytscribe/internal/session"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: s.store.Len()})
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, ModelListResponse{Models: ModelInfos(s.controller.DefaultModel())})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id := s.store.Create()
	st, _ := s.store.Get(id)
	c.JSON(http.StatusCreated, FromState(id, st))
}

func (s *Server) handleGetSession(c *gin.Context) {
	id := c.Param("id")
	st, ok := s.store.Get(id)
	if !ok {
		s.writeError(c, http.StatusNotFound, session.ErrNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, FromState(id, st))
}

func (s *Server) handleSetReference(c *gin.Context) {
	var req ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAPIAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.SetReference(ctx, st, req.Reference)
	})
}

func (s *Server) handlePunctuate(c *gin.Context) {
	req, ok := s.bindAction(c)
	if !ok {
		return
	}
	s.runAPIAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.Punctuate(ctx, st, req.Model)
	})
}

func (s *Server) handleGenerateMetadata(c *gin.Context) {
	req, ok := s.bindAction(c)
	if !ok {
		return
	}
	s.runAPIAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.GenerateMetadata(ctx, st, req.Model)
	})
}

// bindAction decodes an optional ActionRequest body.
func (s *Server) bindAction(c *gin.Context) (ActionRequest, bool) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(c, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func (s *Server) runAPIAction(c *gin.Context, action sessionAction) {
	id := c.Param("id")
	ctx := s.actionContext(c, id)
	st, err := s.store.Do(id, func(st session.State) (session.State, error) {
		return action(ctx, st)
	})
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.writeError(c, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, session.ErrBusy):
		s.writeError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, services.ErrInvalidTransition):
		s.writeError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, services.ErrValidation):
		s.writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, FromState(id, st))
}

func (s *Server) writeError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}
