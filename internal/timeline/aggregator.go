package timeline

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"investor-desk/request-portal-backend/internal/notifications"
	"investor-desk/request-portal-backend/internal/profiles"
	"investor-desk/request-portal-backend/internal/requests"
)

// Sources holds every record associated with one request.
type Sources struct {
	Events        []requests.RequestEvent
	Comments      []requests.RequestComment
	Notifications []notifications.Record
}

// CopyResolver renders notification title and description.
type CopyResolver interface {
	Resolve(record notifications.Record, lang string) notifications.Copy
}

// investorVisibleStatuses lists the statuses whose events investors may see.
// Every status is visible; internal comments carry the admin-only content.
var investorVisibleStatuses = map[requests.Status]bool{
	requests.StatusDraft:            true,
	requests.StatusSubmitted:        true,
	requests.StatusScreening:        true,
	requests.StatusPendingInfo:      true,
	requests.StatusComplianceReview: true,
	requests.StatusApproved:         true,
	requests.StatusRejected:         true,
	requests.StatusSettling:         true,
	requests.StatusCompleted:        true,
}

// entryPriority orders same-timestamp entries, lower first.
var entryPriority = map[EntryType]int{
	EntryNotification: 0,
	EntryStatusChange: 1,
	EntryComment:      2,
}

// Merge projects the three sources into one feed, newest first, and drops
// what viewer.Audience may not see. Investors only get notifications
// addressed to them. It never reads or writes a store.
func Merge(src Sources, viewer Viewer, people map[uuid.UUID]profiles.Profile, resolver CopyResolver) []Entry {
	entries := make([]Entry, 0, len(src.Events)+len(src.Comments)+len(src.Notifications))
	p := phrasesFor(viewer.Language)

	for _, e := range src.Events {
		entries = append(entries, eventEntry(e, viewer.Language, p, people))
	}
	for _, c := range src.Comments {
		entries = append(entries, commentEntry(c, viewer.Language, p, people))
	}
	for _, n := range src.Notifications {
		if viewer.Audience != VisibilityAdmin && n.UserID != viewer.UserID {
			continue
		}
		entries = append(entries, notificationEntry(n, viewer.Language, p, resolver))
	}

	slices.SortFunc(entries, compareEntries)

	visible := entries[:0]
	for _, entry := range entries {
		if entry.VisibleTo(viewer.Audience) {
			visible = append(visible, entry)
		}
	}
	return visible
}

func compareEntries(a, b Entry) int {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	}
	if pa, pb := entryPriority[a.EntryType], entryPriority[b.EntryType]; pa != pb {
		return pa - pb
	}
	return strings.Compare(a.sourceID.String(), b.sourceID.String())
}

func eventEntry(e requests.RequestEvent, lang string, p phrases, people map[uuid.UUID]profiles.Profile) Entry {
	actor, label := ResolveActor(e.ActorID, lookup(people, e.ActorID), lang)

	visibility := VisibilityAdmin
	if investorVisibleStatuses[e.ToStatus] {
		visibility = VisibilityInvestor
	}

	var parts []string
	if e.FromStatus != nil {
		parts = append(parts, p.previousStatus(requests.StatusLabel(*e.FromStatus, lang)))
	}
	if e.Note != nil && strings.TrimSpace(*e.Note) != "" {
		parts = append(parts, *e.Note)
	}

	return Entry{
		ID:          "event:" + e.ID.String(),
		EntryType:   EntryStatusChange,
		CreatedAt:   e.CreatedAt,
		Visibility:  visibility,
		Actor:       actor,
		ActorLabel:  label,
		Title:       p.statusTitle(requests.StatusLabel(e.ToStatus, lang), e.FromStatus == nil),
		Description: strings.Join(parts, ": "),
		StatusChange: &StatusChange{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Note:       e.Note,
		},
		sourceID: e.ID,
	}
}

func commentEntry(c requests.RequestComment, lang string, p phrases, people map[uuid.UUID]profiles.Profile) Entry {
	actorID := c.ActorID
	actor, label := ResolveActor(&actorID, lookup(people, &actorID), lang)

	return Entry{
		ID:          "comment:" + c.ID.String(),
		EntryType:   EntryComment,
		CreatedAt:   c.CreatedAt,
		Visibility:  VisibilityAdmin,
		Actor:       actor,
		ActorLabel:  label,
		Title:       p.comment,
		Description: c.Comment,
		Comment:     &CommentBody{Text: c.Comment},
		sourceID:    c.ID,
	}
}

func notificationEntry(n notifications.Record, lang string, p phrases, resolver CopyResolver) Entry {
	var rendered notifications.Copy
	if resolver != nil {
		rendered = resolver.Resolve(n, lang)
	}

	return Entry{
		ID:          "notification:" + n.ID.String(),
		EntryType:   EntryNotification,
		CreatedAt:   n.CreatedAt,
		Visibility:  VisibilityInvestor,
		ActorLabel:  p.system,
		Title:       rendered.Title,
		Description: rendered.Description,
		Notification: &NotificationBody{
			Type:      n.Type,
			Channel:   n.Channel,
			Payload:   n.Payload,
			ReadAt:    n.ReadAt,
			StateRead: n.StateRead,
			Unread:    n.Unread(),
		},
		sourceID: n.ID,
	}
}

func lookup(people map[uuid.UUID]profiles.Profile, id *uuid.UUID) *profiles.Profile {
	if id == nil {
		return nil
	}
	if profile, ok := people[*id]; ok {
		return &profile
	}
	return nil
}
