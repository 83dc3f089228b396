package discuss_test

import (
	"testing"

	"github.com/harupress/harupress/discuss"
	"github.com/stretchr/testify/assert"
)

func TestSecretVisible(t *testing.T) {
	t.Parallel()

	oauthAuthorship := discuss.Authorship{
		AuthorType:     discuss.AuthorTypeOAuth,
		OAuthAccountID: ptr("account-1"),
	}

	guestAuthorship := discuss.Authorship{
		AuthorType: discuss.AuthorTypeGuest,
		GuestName:  ptr("visitor"),
	}

	tests := []struct {
		name       string
		authorship discuss.Authorship
		viewer     discuss.Viewer
		expected   bool
	}{
		{
			name:       "admin sees oauth-authored secret",
			authorship: oauthAuthorship,
			viewer:     discuss.Viewer{IsAdmin: true},
			expected:   true,
		},
		{
			name:       "admin sees guest-authored secret",
			authorship: guestAuthorship,
			viewer:     discuss.Viewer{IsAdmin: true},
			expected:   true,
		},
		{
			name:       "author sees own secret",
			authorship: oauthAuthorship,
			viewer:     discuss.Viewer{UserID: "account-1"},
			expected:   true,
		},
		{
			name:       "other user does not see secret",
			authorship: oauthAuthorship,
			viewer:     discuss.Viewer{UserID: "account-2"},
			expected:   false,
		},
		{
			name:       "anonymous does not see secret",
			authorship: oauthAuthorship,
			viewer:     discuss.Viewer{},
			expected:   false,
		},
		{
			name:       "guest-authored secret is hidden from everyone but admins",
			authorship: guestAuthorship,
			viewer:     discuss.Viewer{UserID: "account-1"},
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, discuss.SecretVisible(tt.authorship, tt.viewer))
		})
	}
}

func TestMaskSecretContent(t *testing.T) {
	t.Parallel()

	secret := &discuss.Comment{
		ID: "c1",
		Authorship: discuss.Authorship{
			AuthorType:     discuss.AuthorTypeOAuth,
			OAuthAccountID: ptr("account-1"),
		},
		Body:     "only for me",
		IsSecret: true,
	}

	t.Run("masked for strangers", func(t *testing.T) {
		t.Parallel()

		masked := discuss.MaskSecretContent(secret, discuss.Viewer{UserID: "someone-else"})

		assert.Equal(t, discuss.SecretCommentPlaceholder, masked.Body)
		assert.Equal(t, "c1", masked.ID)
		assert.True(t, masked.IsSecret)

		// the original is untouched
		assert.Equal(t, "only for me", secret.Body)
	})

	t.Run("unchanged for the author", func(t *testing.T) {
		t.Parallel()

		visible := discuss.MaskSecretContent(secret, discuss.Viewer{UserID: "account-1"})
		assert.Equal(t, "only for me", visible.Body)
	})

	t.Run("non-secret passes through", func(t *testing.T) {
		t.Parallel()

		public := &discuss.Comment{ID: "c2", Body: "hello"}
		assert.Same(t, public, discuss.MaskSecretContent(public, discuss.Viewer{}))
	})
}
