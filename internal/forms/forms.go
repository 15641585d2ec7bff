// Package forms binds and validates submitted HTML forms. A form keeps the
// submitted values so a page can be re-rendered with them and its errors.
package forms

import (
	"net/http"
	"strings"
)

const (
	msgRequired = "This field is required."
)

// Errors maps a field name to its messages. The "__all__" key holds
// errors that belong to no single field.
type Errors map[string][]string

const NonField = "__all__"

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for field.
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Any() bool {
	return len(e) > 0
}

func formValue(r *http.Request, name string) string {
	return r.PostFormValue(name)
}

func required(errs Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, msgRequired)
	}
}
