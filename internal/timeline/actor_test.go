package timeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investor-desk/request-portal-backend/internal/profiles"
)

func strPtr(s string) *string { return &s }

func TestResolveActorChain(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name    string
		profile *profiles.Profile
		lang    string
		label   string
	}{
		{"display name", &profiles.Profile{Email: "a@x.io", DisplayName: strPtr("Amal H."), PreferredName: strPtr("Amal")}, "en", "Amal H."},
		{"preferred name", &profiles.Profile{Email: "a@x.io", DisplayName: strPtr("  "), PreferredName: strPtr("Amal")}, "en", "Amal"},
		{"email", &profiles.Profile{Email: "a@x.io"}, "en", "a@x.io"},
		{"unknown user", nil, "en", "Unknown user"},
		{"unknown user arabic", nil, "ar", "مستخدم غير معروف"},
		{"empty profile", &profiles.Profile{}, "en", "Unknown user"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actor, label := ResolveActor(&id, tc.profile, tc.lang)
			require.NotNil(t, actor)
			assert.Equal(t, id, actor.ID)
			assert.Equal(t, tc.label, label)
			assert.Equal(t, tc.label, actor.Name)
		})
	}
}

func TestResolveActorSystem(t *testing.T) {
	actor, label := ResolveActor(nil, &profiles.Profile{Email: "ignored@x.io"}, "en")
	assert.Nil(t, actor)
	assert.Equal(t, "System", label)

	_, label = ResolveActor(nil, nil, "ar")
	assert.Equal(t, "النظام", label)
}
