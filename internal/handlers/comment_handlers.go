package handlers

import (
	"net/http"

	"yatube/internal/forms"
	"yatube/internal/service"

	"github.com/gorilla/mux"
)

// HandleAddComment posts a comment under a post. A GET, or a form with
// errors, shows the post page again.
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := routeID(r, "post_id")
		if !ok {
			s.notFound(w, r)
			return
		}
		username := mux.Vars(r)["username"]

		if r.Method != http.MethodPost {
			http.Redirect(w, r, postURL(username, postID), http.StatusFound)
			return
		}

		form, err := forms.ParseCommentForm(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		comment, err := s.Service.AddComment(r.Context(), viewerID(r), username, postID, form)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if comment == nil {
			s.postDetail(w, r, username, postID, form)
			return
		}
		http.Redirect(w, r, postURL(username, postID), http.StatusFound)
	}
}

// HandleDeleteComment lets the comment's author or the post's author
// remove a comment.
func (s *Server) HandleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, ok := routeID(r, "id")
		if !ok {
			s.notFound(w, r)
			return
		}
		post, outcome, err := s.Service.DeleteComment(r.Context(), viewerID(r), commentID)
		switch {
		case err != nil:
			s.fail(w, r, err)
		case outcome == service.Denied:
			s.forbidden(w, r)
		default:
			http.Redirect(w, r, postURL(post.AuthorUsername, post.ID), http.StatusFound)
		}
	}
}
