package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/tartampluch/go-birthdaybot/internal/config"
)

// Discord implements Messenger and Roster over a discordgo session.
// One adapter is bound to one guild and one role name; role identity is
// resolved lazily and re-resolved when the platform reports it gone.
type Discord struct {
	session  *discordgo.Session
	guildID  string
	roleName string

	// Affordances renders the interactive components attached to the one
	// display slot that carries them. Injected by the ui package so the
	// adapter stays ignorant of labels and languages.
	Affordances func() []discordgo.MessageComponent

	roleMu sync.Mutex
	roleID string
}

// NewDiscord wraps an open session.
func NewDiscord(session *discordgo.Session, guildID, roleName string) *Discord {
	return &Discord{
		session:  session,
		guildID:  guildID,
		roleName: roleName,
	}
}

// Session exposes the raw session for the interaction glue.
func (d *Discord) Session() *discordgo.Session {
	return d.session
}

// -----------------------------------------------------------------------------
// Messenger
// -----------------------------------------------------------------------------

// SendMessage posts content to a channel and returns the message identity.
func (d *Discord) SendMessage(ctx context.Context, channelID string, content MessageContent) (string, error) {
	send := &discordgo.MessageSend{Content: content.Body}
	if content.Interactive && d.Affordances != nil {
		send.Components = d.Affordances()
	}

	msg, err := d.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", translateErr(err)
	}
	return msg.ID, nil
}

// EditMessage replaces a message body (and its affordances) in place.
func (d *Discord) EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error {
	edit := &discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Content: &content.Body,
	}
	if content.Interactive && d.Affordances != nil {
		components := d.Affordances()
		edit.Components = &components
	}

	_, err := d.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return translateErr(err)
}

// DeleteMessage removes a message.
func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return translateErr(d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// FetchMessage returns a message's body.
func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID string) (string, error) {
	msg, err := d.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return "", translateErr(err)
	}
	return msg.Content, nil
}

// -----------------------------------------------------------------------------
// Roster
// -----------------------------------------------------------------------------

// pageSize is the REST maximum for one member listing request.
const pageSize = 1000

// ListMembers returns every human member of the guild with their birthday
// role status. The role identity is refreshed on every call so that a role
// deleted between passes surfaces as ErrNotFound, not as stale grants.
func (d *Discord) ListMembers(ctx context.Context) ([]Member, error) {
	roleID, err := d.resolveRole(ctx, true)
	if err != nil {
		return nil, err
	}

	var members []Member
	after := ""
	for {
		page, err := d.session.GuildMembers(d.guildID, after, pageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, translateErr(err)
		}
		for _, m := range page {
			if m.User == nil || m.User.Bot {
				continue
			}
			members = append(members, d.toMember(m, roleID))
		}
		if len(page) < pageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// FetchMember resolves one guild member.
func (d *Discord) FetchMember(ctx context.Context, personID string) (Member, error) {
	roleID, err := d.resolveRole(ctx, false)
	if err != nil {
		return Member{}, err
	}

	m, err := d.session.GuildMember(d.guildID, personID, discordgo.WithContext(ctx))
	if err != nil {
		return Member{}, translateErr(err)
	}
	return d.toMember(m, roleID), nil
}

// GrantRole adds the birthday role to a member.
func (d *Discord) GrantRole(ctx context.Context, personID string) error {
	roleID, err := d.resolveRole(ctx, false)
	if err != nil {
		return err
	}
	return translateErr(d.session.GuildMemberRoleAdd(d.guildID, personID, roleID, discordgo.WithContext(ctx)))
}

// RevokeRole removes the birthday role from a member.
func (d *Discord) RevokeRole(ctx context.Context, personID string) error {
	roleID, err := d.resolveRole(ctx, false)
	if err != nil {
		return err
	}
	return translateErr(d.session.GuildMemberRoleRemove(d.guildID, personID, roleID, discordgo.WithContext(ctx)))
}

// resolveRole maps the configured role name to its identity.
// With refresh set the cached value is discarded first.
func (d *Discord) resolveRole(ctx context.Context, refresh bool) (string, error) {
	d.roleMu.Lock()
	defer d.roleMu.Unlock()

	if !refresh && d.roleID != "" {
		return d.roleID, nil
	}

	roles, err := d.session.GuildRoles(d.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", translateErr(err)
	}
	for _, r := range roles {
		if r.Name == d.roleName {
			d.roleID = r.ID
			return r.ID, nil
		}
	}

	d.roleID = ""
	slog.Warn(config.ErrRoleNotFound,
		config.LogKeyComponent, config.CompPlatform,
		config.LogKeyRole, d.roleName,
	)
	return "", fmt.Errorf("%s %q: %w", config.ErrRoleNotFound, d.roleName, ErrNotFound)
}

func (d *Discord) toMember(m *discordgo.Member, roleID string) Member {
	name := m.Nick
	if name == "" && m.User.GlobalName != "" {
		name = m.User.GlobalName
	}
	if name == "" {
		name = m.User.Username
	}

	hasRole := false
	for _, id := range m.Roles {
		if id == roleID {
			hasRole = true
			break
		}
	}

	return Member{
		ID:          m.User.ID,
		DisplayName: name,
		Mention:     m.User.Mention(),
		HasRole:     hasRole,
	}
}

// translateErr maps the platform's "unknown X" REST errors onto ErrNotFound
// so callers can branch without importing discordgo.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownRole,
			discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%s: %w", restErr.Message.Message, ErrNotFound)
		}
	}
	return err
}
