package handlers

import (
	"net/http"
	"strings"

	"yatube/internal/forms"
	"yatube/internal/render"

	"github.com/gorilla/mux"
)

// safeNext keeps login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// HandleSignup registers a user and logs them in.
func (s *Server) HandleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.page(w, r, http.StatusOK, render.Signup, &render.SignupView{
				Base: base(r, "Sign up"),
				Form: forms.NewSignupForm(),
			})
			return
		}

		form, err := forms.ParseSignupForm(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := s.Service.Signup(r.Context(), form)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if user == nil {
			s.page(w, r, http.StatusOK, render.Signup, &render.SignupView{
				Base: base(r, "Sign up"),
				Form: form,
			})
			return
		}
		if err := s.Sessions.Login(w, user); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HandleLogin checks credentials and sets the session cookie.
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.page(w, r, http.StatusOK, render.Login, &render.LoginView{
				Base: base(r, "Log in"),
				Form: forms.NewLoginForm(r.URL.Query().Get("next")),
			})
			return
		}

		form, err := forms.ParseLoginForm(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := s.Service.Login(r.Context(), form)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if user == nil {
			s.page(w, r, http.StatusOK, render.Login, &render.LoginView{
				Base: base(r, "Log in"),
				Form: form,
			})
			return
		}
		if err := s.Sessions.Login(w, user); err != nil {
			s.fail(w, r, err)
			return
		}
		s.Logger.Info("user logged in", "user_id", user.ID)
		http.Redirect(w, r, safeNext(form.Next), http.StatusFound)
	}
}

// HandleLogout clears the session cookie.
func (s *Server) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Sessions.Logout(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HandleProfile shows an author's card and posts.
func (s *Server) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.Service.Profile(r.Context(), mux.Vars(r)["username"], viewerID(r), pageParam(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.page(w, r, http.StatusOK, render.Profile, &render.ProfileView{
			Base:        base(r, view.Author.FullName()),
			ProfileView: view,
		})
	}
}

// HandleFollow subscribes the viewer to an author.
func (s *Server) HandleFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, outcome, err := s.Service.Follow(r.Context(), viewerID(r), mux.Vars(r)["username"])
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.Logger.Debug("follow", "author", author.Username, "outcome", outcome)
		http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
	}
}

// HandleUnfollow is a no-op redirect when there is nothing to undo,
// including when the author does not exist.
func (s *Server) HandleUnfollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]
		_, outcome, err := s.Service.Unfollow(r.Context(), viewerID(r), username)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.Logger.Debug("unfollow", "author", username, "outcome", outcome)
		http.Redirect(w, r, profileURL(username), http.StatusFound)
	}
}
