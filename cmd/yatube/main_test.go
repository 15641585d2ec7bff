package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "yatube dev\n", out.String())
}

func TestWriteUsers(t *testing.T) {
	var out bytes.Buffer
	writeUsers(&out, []*models.User{
		{Username: "leo", FirstName: "Leo", LastName: "Tolstoy", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Username: "ann"},
	})
	text := out.String()
	assert.Contains(t, text, "USERNAME")
	assert.Contains(t, text, "Leo Tolstoy")
	assert.Contains(t, text, "2024-02-01")
	assert.Equal(t, 2, strings.Count(text, "ann"))
}

func TestWriteGroups(t *testing.T) {
	var out bytes.Buffer
	writeGroups(&out, []*models.Group{{Slug: "cats", Title: "Cats"}})
	assert.Contains(t, out.String(), "cats")
	assert.Contains(t, out.String(), "SLUG")
}
