package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name:    "valid comment",
			comment: &Comment{ID: 1, PostID: 1, AuthorID: 2, Text: "Nice post"},
			wantErr: false,
		},
		{
			name:    "empty text",
			comment: &Comment{ID: 1, PostID: 1, AuthorID: 2, Text: ""},
			wantErr: true,
		},
		{
			name:    "missing post",
			comment: &Comment{ID: 1, AuthorID: 2, Text: "orphan"},
			wantErr: true,
		},
		{
			name:    "missing author",
			comment: &Comment{ID: 1, PostID: 1, Text: "anonymous"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := &Comment{PostID: 1, AuthorID: 1, Text: "Test Comment"}

	assert.True(t, comment.CreatedAt.IsZero())
	comment.BeforeCreate(time.Now())
	assert.False(t, comment.CreatedAt.IsZero())
}

func TestCommentReferences(t *testing.T) {
	comment := &Comment{Text: "Test Comment"}

	t.Run("set author", func(t *testing.T) {
		assert.NoError(t, comment.SetAuthor(&User{ID: 5}))
		assert.Equal(t, 5, comment.AuthorID)
		assert.Error(t, comment.SetAuthor(nil))
	})
}
