package handlers

import (
	"net/http"

	"yatube/internal/render"
	"yatube/internal/utils"
)

// HandleNotFound renders the 404 page.
func (s *Server) HandleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r)
	}
}

// HandleServerError renders the 500 page. It is also the panic fallback.
func (s *Server) HandleServerError() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.internalError(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusNotFound, render.NotFound, &render.ErrorView{
		Base: base(r, "Page not found"),
		Path: r.URL.Path,
	})
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusForbidden, render.Denied, &render.ErrorView{
		Base: base(r, "Forbidden"),
		Path: r.URL.Path,
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusInternalServerError, render.Internal, &render.ErrorView{
		Base: base(r, "Server error"),
		Path: r.URL.Path,
	})
}

// fail answers a request whose service call returned err. Every
// authentication or permission failure renders the 403 page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case utils.IsNotFound(err):
		s.notFound(w, r)
	case utils.IsAuthError(err):
		s.forbidden(w, r)
	default:
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.internalError(w, r)
	}
}
