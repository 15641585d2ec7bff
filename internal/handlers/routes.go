package handlers

import (
	"net/http"

	"yatube/internal/middleware"

	"github.com/gorilla/mux"
)

const (
	uuidPattern = `[0-9a-fA-F-]{36}`
	userPattern = `[\w.@+-]+`
)

// Routes builds the router and wraps it in the request middleware.
// Order matters: fixed prefixes are registered before the username
// catch-alls. Routes that change state without a form page accept POST only.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(false)

	login := middleware.RequireLogin

	r.HandleFunc("/healthz", s.HandleHealth()).Methods(http.MethodGet)
	if s.MetricsEnabled && s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}
	if s.Media != nil && s.MediaPrefix != "" {
		r.PathPrefix(s.MediaPrefix).Handler(s.Media).Methods(http.MethodGet, http.MethodHead)
	}

	r.HandleFunc("/auth/signup/", s.HandleSignup()).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/auth/login/", s.HandleLogin()).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/auth/logout/", s.HandleLogout()).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/404/", s.HandleNotFound()).Methods(http.MethodGet)
	r.HandleFunc("/500/", s.HandleServerError()).Methods(http.MethodGet)

	r.HandleFunc("/", s.HandleIndex()).Methods(http.MethodGet)
	r.HandleFunc("/group/{slug}/", s.HandleGroup()).Methods(http.MethodGet)
	r.Handle("/new/", login(s.HandleNewPost())).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/follow/", login(s.HandleFollowFeed())).Methods(http.MethodGet)
	r.HandleFunc("/delete/post/{id:"+uuidPattern+"}", s.HandleDeletePost()).Methods(http.MethodPost)
	r.HandleFunc("/delete/comment/{id:"+uuidPattern+"}", s.HandleDeleteComment()).Methods(http.MethodPost)

	r.HandleFunc("/{username:"+userPattern+"}/", s.HandleProfile()).Methods(http.MethodGet)
	r.Handle("/{username:"+userPattern+"}/follow/", login(s.HandleFollow())).Methods(http.MethodPost)
	r.Handle("/{username:"+userPattern+"}/unfollow/", login(s.HandleUnfollow())).Methods(http.MethodPost)
	r.HandleFunc("/{username:"+userPattern+"}/{post_id:"+uuidPattern+"}/", s.HandlePostDetail()).Methods(http.MethodGet)
	r.Handle("/{username:"+userPattern+"}/{post_id:"+uuidPattern+"}/comment/", login(s.HandleAddComment())).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/{username:"+userPattern+"}/{post_id:"+uuidPattern+"}/edit/", login(s.HandleEditPost())).Methods(http.MethodGet, http.MethodPost)

	r.NotFoundHandler = s.HandleNotFound()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	var handler http.Handler = r
	handler = s.Sessions.Authenticate(handler)
	handler = middleware.RequestLogger(s.Logger, s.Metrics)(handler)
	handler = middleware.Recover(s.Logger, s.Sessions.Authenticate(s.HandleServerError()))(handler)
	return handler
}
