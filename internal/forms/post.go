package forms

import (
	"errors"
	"net/http"
	"strings"
)

// PostForm is the create and edit form for a post. Group holds the
// selected group ID, or "" for none; the caller checks it exists.
type PostForm struct {
	Text   string
	Group  string
	Image  *Upload
	Errors Errors
}

func NewPostForm() *PostForm {
	return &PostForm{Errors: Errors{}}
}

// ParsePostForm binds a urlencoded or multipart POST body.
func ParsePostForm(r *http.Request) (*PostForm, error) {
	if err := parseBody(r); err != nil {
		return nil, err
	}

	form := &PostForm{
		Text:   formValue(r, "text"),
		Group:  strings.TrimSpace(formValue(r, "group")),
		Errors: Errors{},
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			form.Errors.Add("image", msgInvalidImage)
		default:
			defer file.Close()
			upload, msg := readImage(file, header)
			if msg != "" {
				form.Errors.Add("image", msg)
			}
			form.Image = upload
		}
	}
	return form, nil
}

// Valid runs field checks and reports whether the form has no errors.
func (f *PostForm) Valid() bool {
	required(f.Errors, "text", f.Text)
	return !f.Errors.Any()
}

func parseBody(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(MaxImageSize)
	}
	return r.ParseForm()
}
