package forms

import "net/http"

type CommentForm struct {
	Text   string
	Errors Errors
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func ParseCommentForm(r *http.Request) (*CommentForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &CommentForm{Text: formValue(r, "text"), Errors: Errors{}}, nil
}

func (f *CommentForm) Valid() bool {
	required(f.Errors, "text", f.Text)
	return !f.Errors.Any()
}
