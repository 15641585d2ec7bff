package forms

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/new/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func urlencodedRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPostFormRequiresText(t *testing.T) {
	form, err := ParsePostForm(urlencodedRequest(url.Values{"text": {"   "}}))
	require.NoError(t, err)
	assert.False(t, form.Valid())
	assert.Equal(t, msgRequired, form.Errors.Get("text"))

	form, err = ParsePostForm(urlencodedRequest(url.Values{"text": {"hello"}, "group": {" abc "}}))
	require.NoError(t, err)
	assert.True(t, form.Valid())
	assert.Equal(t, "abc", form.Group)
	assert.Nil(t, form.Image)
}

func TestPostFormAcceptsImages(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		data        []byte
		contentType string
		stored      string
	}{
		{"png", "small.png", pngBytes(t), "image/png", "small.png"},
		{"gif with wrong extension", "anim.jpg", gifBytes(t), "image/gif", "anim.gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, map[string]string{"text": "with image"}, tt.filename, tt.data)
			form, err := ParsePostForm(req)
			require.NoError(t, err)
			require.True(t, form.Valid(), form.Errors)
			require.NotNil(t, form.Image)
			assert.Equal(t, tt.contentType, form.Image.ContentType)
			assert.Equal(t, tt.stored, form.Image.Filename)
		})
	}
}

func TestPostFormRejectsNonImage(t *testing.T) {
	req := multipartRequest(t, map[string]string{"text": "oops"}, "notes.png", []byte("plain text"))
	form, err := ParsePostForm(req)
	require.NoError(t, err)
	assert.False(t, form.Valid())
	assert.Equal(t, msgInvalidImage, form.Errors.Get("image"))
	assert.Equal(t, "oops", form.Text)
}

func TestCommentForm(t *testing.T) {
	form, err := ParseCommentForm(urlencodedRequest(url.Values{"text": {""}}))
	require.NoError(t, err)
	assert.False(t, form.Valid())

	form, err = ParseCommentForm(urlencodedRequest(url.Values{"text": {"nice"}}))
	require.NoError(t, err)
	assert.True(t, form.Valid())
}

func TestValidateUsername(t *testing.T) {
	assert.Empty(t, ValidateUsername("leo.tolstoy+1@x_y-z"))
	assert.NotEmpty(t, ValidateUsername(""))
	assert.NotEmpty(t, ValidateUsername("has space"))
	assert.NotEmpty(t, ValidateUsername(strings.Repeat("a", 151)))
	assert.NotEmpty(t, ValidateUsername("new"))
	assert.NotEmpty(t, ValidateUsername("Follow"))
}

func TestSignupForm(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"mismatch", url.Values{"username": {"leo"}, "password1": {"correct-horse"}, "password2": {"battery"}}, "password2"},
		{"short", url.Values{"username": {"leo"}, "password1": {"short"}, "password2": {"short"}}, "password2"},
		{"numeric", url.Values{"username": {"leo"}, "password1": {"12345678"}, "password2": {"12345678"}}, "password2"},
		{"reserved", url.Values{"username": {"auth"}, "password1": {"correct-horse"}, "password2": {"correct-horse"}}, "username"},
		{"missing password", url.Values{"username": {"leo"}}, "password1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := ParseSignupForm(urlencodedRequest(tt.values))
			require.NoError(t, err)
			assert.False(t, form.Valid())
			assert.True(t, form.Errors.Has(tt.field), form.Errors)
		})
	}

	form, err := ParseSignupForm(urlencodedRequest(url.Values{
		"username":   {"leo"},
		"first_name": {"Leo"},
		"password1":  {"correct-horse"},
		"password2":  {"correct-horse"},
	}))
	require.NoError(t, err)
	assert.True(t, form.Valid(), form.Errors)
}

func TestLoginForm(t *testing.T) {
	form, err := ParseLoginForm(urlencodedRequest(url.Values{"username": {"leo"}, "next": {"/new/"}}))
	require.NoError(t, err)
	assert.False(t, form.Valid())
	assert.True(t, form.Errors.Has("password"))
	assert.Equal(t, "/new/", form.Next)
}
