package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		want    string
		wantErr error
	}{
		{"normalizes case and spaces", "  Test.User@Gmail.COM  ", "test.user@gmail.com", nil},
		{"plain address", "ann@kanso.app", "ann@kanso.app", nil},
		{"missing at", "invalid-email-format", "", domain.ErrInvalidEmail},
		{"display name form", "Ann <ann@kanso.app>", "", domain.ErrInvalidEmail},
		{"empty", "   ", "", domain.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := domain.NewUser("123", tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "123", user.ID)
			assert.Equal(t, tt.want, user.Email)
			assert.False(t, user.CreatedAt.IsZero())
		})
	}
}

func TestUserPassword(t *testing.T) {
	t.Parallel()

	t.Run("hashes and bumps UpdatedAt", func(t *testing.T) {
		t.Parallel()
		user, err := domain.NewUser("123", "test@test.com")
		require.NoError(t, err)
		before := user.UpdatedAt

		time.Sleep(time.Millisecond)
		require.NoError(t, user.SetPassword("superSecret123"))

		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "superSecret123", user.PasswordHash)
		assert.True(t, user.UpdatedAt.After(before))
	})

	t.Run("rejects short passwords by rune count", func(t *testing.T) {
		t.Parallel()
		user, _ := domain.NewUser("123", "test@test.com")

		assert.ErrorIs(t, user.SetPassword("short"), domain.ErrPasswordTooShort)
		// Seven runes, more than eight bytes.
		assert.ErrorIs(t, user.SetPassword("ééééééé"), domain.ErrPasswordTooShort)
	})

	t.Run("checks credentials", func(t *testing.T) {
		t.Parallel()
		user, _ := domain.NewUser("123", "test@test.com")

		assert.ErrorIs(t, user.CheckPassword("anything"), domain.ErrInvalidCredentials)

		require.NoError(t, user.SetPassword("correctPassword"))
		assert.NoError(t, user.CheckPassword("correctPassword"))
		assert.ErrorIs(t, user.CheckPassword("wrongPassword"), domain.ErrInvalidCredentials)
	})
}
