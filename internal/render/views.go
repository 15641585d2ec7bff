package render

import (
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"
)

// Base is embedded in every page view.
type Base struct {
	Title  string
	Viewer *middleware.Viewer
}

type FeedView struct {
	Base
	Page  *service.FeedPage
	Group *models.Group
}

type ProfileView struct {
	Base
	*service.ProfileView
}

type PostView struct {
	Base
	*service.PostView
	CommentForm *forms.CommentForm
	CanEdit     bool
}

type PostFormView struct {
	Base
	Form   *forms.PostForm
	Groups []*models.Group
	// Post is set when editing.
	Post *models.Post
}

type SignupView struct {
	Base
	Form *forms.SignupForm
}

type LoginView struct {
	Base
	Form *forms.LoginForm
}

type ErrorView struct {
	Base
	Path string
}
