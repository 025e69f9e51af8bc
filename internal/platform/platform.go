// Package platform abstracts the messaging platform consumed by the core:
// message send/edit/delete, role grants and group membership. The core only
// ever talks to these interfaces; the Discord adapter lives alongside them.
package platform

import (
	"context"
	"errors"
)

// ErrNotFound reports that a remote resource (message, member, channel,
// role, guild) no longer exists. Callers decide whether that is a fallback
// path (recreate a lost display slot), an ignorable condition (deleting an
// already-deleted greeting) or an abort-this-pass condition (missing role).
var ErrNotFound = errors.New("platform: not found")

// MessageContent is what the core asks the platform to render.
// Interactive marks the single display slot that carries the submit/change
// affordances; how those are drawn is the adapter's business.
type MessageContent struct {
	Body        string
	Interactive bool
}

// Messenger covers the channel message operations of the platform.
type Messenger interface {
	// SendMessage posts content and returns the new message identity.
	SendMessage(ctx context.Context, channelID string, content MessageContent) (string, error)

	// EditMessage replaces a message's content in place.
	// Returns ErrNotFound if the message no longer exists.
	EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error

	// DeleteMessage removes a message. Returns ErrNotFound if already gone.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// FetchMessage returns a message's body, or ErrNotFound.
	FetchMessage(ctx context.Context, channelID, messageID string) (string, error)
}

// Member is the roster view of one group member.
type Member struct {
	ID          string
	DisplayName string
	Mention     string

	// HasRole reports whether the member currently carries the birthday
	// role the adapter was configured with.
	HasRole bool
}

// Roster covers group membership and role mutation.
type Roster interface {
	// ListMembers returns every member of the group. Returns ErrNotFound
	// when the group or the configured role cannot be resolved.
	ListMembers(ctx context.Context) ([]Member, error)

	// FetchMember resolves a single member, or ErrNotFound.
	FetchMember(ctx context.Context, personID string) (Member, error)

	GrantRole(ctx context.Context, personID string) error
	RevokeRole(ctx context.Context, personID string) error
}
