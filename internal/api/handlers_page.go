package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/session"
)

const (
	flashBusy         = "Another action is still running for this session. Try again when it finishes."
	flashUnknownModel = "The selected model is not available."
)

var templateFuncs = template.FuncMap{
	"errorLabel": func(stage string) string {
		if stage == string(session.StageError) {
			return "An error occurred"
		}
		return "Error"
	},
}

type pageData struct {
	Session       SessionView
	Models        []ModelInfo
	SelectedModel string
	Flash         string
}

type sessionAction func(ctx context.Context, st session.State) (session.State, error)

func (s *Server) handlePage(c *gin.Context) {
	id := s.cookieSession(c)
	s.renderPage(c, http.StatusOK, id, "")
}

func (s *Server) handleFormReference(c *gin.Context) {
	reference := c.PostForm("reference")
	s.runFormAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.SetReference(ctx, st, reference)
	})
}

func (s *Server) handleFormPunctuate(c *gin.Context) {
	model := c.PostForm("model")
	s.runFormAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.Punctuate(ctx, st, model)
	})
}

func (s *Server) handleFormMetadata(c *gin.Context) {
	model := c.PostForm("model")
	s.runFormAction(c, func(ctx context.Context, st session.State) (session.State, error) {
		return s.controller.GenerateMetadata(ctx, st, model)
	})
}

func (s *Server) runFormAction(c *gin.Context, action sessionAction) {
	id := s.cookieSession(c)
	ctx := s.actionContext(c, id)
	_, err := s.store.Do(id, func(st session.State) (session.State, error) {
		return action(ctx, st)
	})
	switch {
	case errors.Is(err, session.ErrBusy):
		s.renderPage(c, http.StatusConflict, id, flashBusy)
		return
	case errors.Is(err, services.ErrValidation):
		s.renderPage(c, http.StatusBadRequest, id, flashUnknownModel)
		return
	case err != nil:
		logging.WithContext(ctx, s.log()).Debug("form action finished with error", logging.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) renderPage(c *gin.Context, status int, id, flash string) {
	st, _ := s.store.Get(id)
	selected := st.Model
	if selected == "" {
		selected = s.controller.DefaultModel()
	}
	c.HTML(status, "index.html", pageData{
		Session:       FromState(id, st),
		Models:        ModelInfos(s.controller.DefaultModel()),
		SelectedModel: selected,
		Flash:         flash,
	})
}

// cookieSession returns the session named by the cookie, creating one and
// refreshing the cookie when needed.
func (s *Server) cookieSession(c *gin.Context) string {
	existing, _ := c.Cookie(sessionCookie)
	id := s.store.Ensure(existing)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(s.cookieTTL.Seconds()), "/", "", false, true)
	return id
}
