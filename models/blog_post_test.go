package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostStatus_Valid(t *testing.T) {
	for _, s := range PostStatuses {
		assert.True(t, s.Valid(), "status %q should be valid", s)
	}
	assert.False(t, PostStatus("").Valid())
	assert.False(t, PostStatus("deleted").Valid())
	assert.False(t, PostStatus("Published").Valid())
}

func TestBlogPost_BeforeSave_Defaults(t *testing.T) {
	post := &BlogPost{Title: "t", Body: "b"}

	require.NoError(t, post.BeforeSave(nil))

	assert.Equal(t, StatusDraft, post.Status)
	assert.False(t, post.PubDate.IsZero())
}

func TestBlogPost_BeforeSave_RejectsUnknownStatus(t *testing.T) {
	post := &BlogPost{Title: "t", Body: "b", Status: "deleted"}

	assert.Error(t, post.BeforeSave(nil))
}

func TestBlogPost_AuthoredBy(t *testing.T) {
	id := uint(7)
	post := &BlogPost{AuthorID: &id}

	assert.True(t, post.AuthoredBy(7))
	assert.False(t, post.AuthoredBy(8))
	assert.False(t, (&BlogPost{}).AuthoredBy(7))
}

func TestUser_Password(t *testing.T) {
	u := &User{Username: "testuser"}
	require.NoError(t, u.SetPassword("secretpassword"))

	assert.NotEqual(t, "secretpassword", u.PasswordHash)
	assert.True(t, u.CheckPassword("secretpassword"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, (&User{}).CheckPassword(""))
}
