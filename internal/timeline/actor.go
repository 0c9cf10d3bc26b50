package timeline

import (
	"strings"

	"github.com/google/uuid"

	"investor-desk/request-portal-backend/internal/profiles"
)

// labelStep is one state of the actor-label chain.
type labelStep int

const (
	stepDisplayName labelStep = iota
	stepPreferredName
	stepEmail
	stepUnknownUser
)

// ResolveActor turns an actor id and its profile (nil when unknown) into a
// display identity and label. A nil actorID is the system actor, which has
// no identity. Every event and comment label goes through this chain.
func ResolveActor(actorID *uuid.UUID, profile *profiles.Profile, lang string) (*Actor, string) {
	p := phrasesFor(lang)
	if actorID == nil {
		return nil, p.system
	}

	actor := &Actor{ID: *actorID}
	if profile != nil {
		actor.Email = profile.Email
	}

	for step := stepDisplayName; ; step++ {
		var candidate string
		switch step {
		case stepDisplayName:
			if profile != nil {
				candidate = deref(profile.DisplayName)
			}
		case stepPreferredName:
			if profile != nil {
				candidate = deref(profile.PreferredName)
			}
		case stepEmail:
			if profile != nil {
				candidate = profile.Email
			}
		case stepUnknownUser:
			candidate = p.unknownUser
		}
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			actor.Name = candidate
			return actor, candidate
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
