package handlers

import (
	"net/http"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/render"
	"yatube/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func postURL(username string, postID uuid.UUID) string {
	return "/" + username + "/" + postID.String() + "/"
}

func profileURL(username string) string {
	return "/" + username + "/"
}

// routeID parses a UUID path variable. ok is false for malformed IDs.
func routeID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

func (s *Server) postForm(w http.ResponseWriter, r *http.Request, status int, form *forms.PostForm, post *models.Post) {
	groups, err := s.Service.ListGroups(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	s.page(w, r, status, render.PostForm, &render.PostFormView{
		Base:   base(r, title),
		Form:   form,
		Groups: groups,
		Post:   post,
	})
}

// HandleNewPost shows and processes the post creation form.
func (s *Server) HandleNewPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.postForm(w, r, http.StatusOK, forms.NewPostForm(), nil)
			return
		}

		form, err := forms.ParsePostForm(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		post, err := s.Service.CreatePost(r.Context(), viewerID(r), form)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if post == nil {
			s.postForm(w, r, http.StatusOK, form, nil)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HandlePostDetail shows a post with its comments.
func (s *Server) HandlePostDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := routeID(r, "post_id")
		if !ok {
			s.notFound(w, r)
			return
		}
		s.postDetail(w, r, mux.Vars(r)["username"], postID, forms.NewCommentForm())
	}
}

func (s *Server) postDetail(w http.ResponseWriter, r *http.Request, username string, postID uuid.UUID, commentForm *forms.CommentForm) {
	view, err := s.Service.PostDetail(r.Context(), username, postID, viewerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, render.Post, &render.PostView{
		Base:        base(r, view.Post.String()),
		PostView:    view,
		CommentForm: commentForm,
		CanEdit:     view.IsSelf,
	})
}

// HandleEditPost lets the author change a post. Everyone else gets 403.
func (s *Server) HandleEditPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := routeID(r, "post_id")
		if !ok {
			s.notFound(w, r)
			return
		}
		username := mux.Vars(r)["username"]

		if r.Method != http.MethodPost {
			post, outcome, err := s.Service.EditablePost(r.Context(), viewerID(r), username, postID)
			switch {
			case err != nil:
				s.fail(w, r, err)
			case outcome == service.Denied:
				s.forbidden(w, r)
			default:
				form := forms.NewPostForm()
				form.Text = post.Text
				if post.GroupID != nil {
					form.Group = post.GroupID.String()
				}
				s.postForm(w, r, http.StatusOK, form, post)
			}
			return
		}

		form, err := forms.ParsePostForm(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		post, outcome, err := s.Service.EditPost(r.Context(), viewerID(r), username, postID, form)
		switch {
		case err != nil:
			s.fail(w, r, err)
		case outcome == service.Denied:
			s.forbidden(w, r)
		case outcome == service.Done:
			http.Redirect(w, r, postURL(username, post.ID), http.StatusFound)
		default:
			s.postForm(w, r, http.StatusOK, form, post)
		}
	}
}

// HandleDeletePost removes a post owned by the viewer.
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := routeID(r, "id")
		if !ok {
			s.notFound(w, r)
			return
		}
		outcome, err := s.Service.DeletePost(r.Context(), viewerID(r), postID)
		switch {
		case err != nil:
			s.fail(w, r, err)
		case outcome == service.Denied:
			s.forbidden(w, r)
		default:
			http.Redirect(w, r, "/", http.StatusFound)
		}
	}
}
