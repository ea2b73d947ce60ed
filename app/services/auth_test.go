package services

import (
	"testing"

	"inkpost/app/models"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{name: "anonymous", actor: models.Anonymous, wantErr: ErrForbidden},
		{name: "regular user", actor: models.Actor{User: &models.User{ID: 2}}, wantErr: ErrForbidden},
		{name: "admin", actor: models.Actor{User: &models.User{ID: AdminUserID}}, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdmin(tt.actor)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.True(t, IsAdmin(tt.actor))
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, IsAdmin(tt.actor))
		})
	}
}
