package database

import (
	"testing"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentToModel(t *testing.T) {
	m := &MongoDB{}
	id, author, group := uuid.New(), uuid.New(), uuid.New()
	groupID := group.String()

	post, err := m.DocumentToModel(&PostDocument{
		ID:       id.String(),
		Text:     "hello",
		AuthorID: author.String(),
		GroupID:  &groupID,
	})
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, author, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group, *post.GroupID)

	_, err = m.DocumentToModel(&PostDocument{ID: id.String(), AuthorID: "not-a-uuid"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrDatabase))

	bad := "broken"
	_, err = m.DocumentToModel(&PostDocument{ID: id.String(), AuthorID: author.String(), GroupID: &bad})
	assert.Error(t, err)
}

func TestOnlyPost(t *testing.T) {
	_, err := onlyPost(nil, "abc")
	assert.True(t, utils.IsErrorCode(err, utils.ErrDatabase))
	assert.False(t, utils.IsNotFound(err))

	want := &models.Post{ID: uuid.New()}
	got, err := onlyPost([]*models.Post{want}, want.ID.String())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
