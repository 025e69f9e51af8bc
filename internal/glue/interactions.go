package glue

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/ui"
)

// Interactions is the thin glue between the platform's widgets and the ui
// package's closed action set: slash commands and buttons open the input
// form, form submissions become Actions, replies stay ephemeral.
type Interactions struct {
	Adapter    *platform.Discord
	Dispatcher *ui.Dispatcher
	Translator *ui.Translator
	GuildID    string
}

// Register binds the interaction handler, publishes the guild commands and
// installs the display affordances renderer on the adapter.
func (x *Interactions) Register() error {
	session := x.Adapter.Session()
	session.AddHandler(x.handleInteraction)

	x.Adapter.Affordances = x.affordances

	commands := []*discordgo.ApplicationCommand{
		{Name: config.CmdBirthday, Description: config.CmdBirthdayDesc},
		{Name: config.CmdChange, Description: config.CmdChangeDesc},
		{Name: config.CmdRefresh, Description: config.CmdRefreshDesc},
	}

	_, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, x.GuildID, commands)
	if err != nil {
		return err
	}

	slog.Info(config.MsgCommandsSynced,
		config.LogKeyComponent, config.CompPlatform,
		config.LogKeyGuild, x.GuildID,
		config.LogKeyCount, len(commands),
	)
	return nil
}

// affordances renders the submit/change buttons carried by the interactive
// display slot.
func (x *Interactions) affordances() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    x.Translator.T(config.TKeyBtnSubmit),
					Style:    discordgo.PrimaryButton,
					CustomID: config.CustomIDSubmitButton,
				},
				discordgo.Button{
					Label:    x.Translator.T(config.TKeyBtnChange),
					Style:    discordgo.SecondaryButton,
					CustomID: config.CustomIDChangeButton,
				},
			},
		},
	}
}

func (x *Interactions) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		x.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		x.handleButton(s, i)
	case discordgo.InteractionModalSubmit:
		x.handleModal(s, i)
	}
}

func (x *Interactions) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case config.CmdBirthday:
		x.openModal(s, i, config.CustomIDSubmitModal)
	case config.CmdChange:
		x.openModal(s, i, config.CustomIDChangeModal)
	case config.CmdRefresh:
		reply := x.Dispatcher.Dispatch(context.Background(), ui.Action{
			Kind:     ui.ActionRefreshDisplay,
			PersonID: interactionUserID(i),
		})
		x.replyEphemeral(s, i, reply)
	}
}

func (x *Interactions) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.MessageComponentData().CustomID {
	case config.CustomIDSubmitButton:
		x.openModal(s, i, config.CustomIDSubmitModal)
	case config.CustomIDChangeButton:
		x.openModal(s, i, config.CustomIDChangeModal)
	}
}

func (x *Interactions) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	kind := ui.ActionSubmitBirthday
	if data.CustomID == config.CustomIDChangeModal {
		kind = ui.ActionChangeBirthday
	}

	fields := modalFields(data)
	reply := x.Dispatcher.Dispatch(context.Background(), ui.Action{
		Kind:     kind,
		PersonID: interactionUserID(i),
		DateText: fields[config.CustomIDDateField],
		ZoneText: fields[config.CustomIDZoneField],
	})
	x.replyEphemeral(s, i, reply)
}

// openModal shows the birthday input form.
func (x *Interactions) openModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID,
			Title:    x.Translator.T(config.TKeyModalTitle),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    config.CustomIDDateField,
							Label:       x.Translator.T(config.TKeyModalDateLabel),
							Placeholder: x.Translator.T(config.TKeyModalDateHint),
							Style:       discordgo.TextInputShort,
							Required:    true,
							MaxLength:   5,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    config.CustomIDZoneField,
							Label:       x.Translator.T(config.TKeyModalZoneLabel),
							Placeholder: x.Translator.T(config.TKeyModalZoneHint),
							Style:       discordgo.TextInputShort,
							Required:    false,
							MaxLength:   64,
						},
					},
				},
			},
		},
	})
	if err != nil {
		slog.Warn(config.MsgItemSkipped,
			config.LogKeyComponent, config.CompPlatform,
			config.LogKeyError, err,
		)
	}
}

func (x *Interactions) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn(config.MsgItemSkipped,
			config.LogKeyComponent, config.CompPlatform,
			config.LogKeyError, err,
		)
	}
}

// modalFields flattens the submitted form rows into customID -> value.
func modalFields(data discordgo.ModalSubmitInteractionData) map[string]string {
	fields := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
