package bot

import (
	"context"
	"fmt"

	"streamwarden/internal/moderation"
	"streamwarden/internal/store"
	"streamwarden/internal/suggest"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const suggestionModalID = "suggestion_modal"

const explanationText = "Pour soutenir une suggestion, cliquez sur 👍. Pour voter contre, cliquez sur 👎. Chaque membre ne peut voter qu'une seule fois par suggestion."

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(session, interaction)
	case discordgo.InteractionModalSubmit:
		if interaction.ModalSubmitData().CustomID == suggestionModalID {
			b.handleSuggestionSubmit(session, interaction)
		}
	case discordgo.InteractionMessageComponent:
		b.handleVote(session, interaction)
	}
}

func (b *Bot) handleCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respond(session, interaction, "Cette commande n'est disponible que sur le serveur.", true)
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "punish":
		b.handlePunish(session, interaction, data.Options)
	case "purge":
		b.handlePurge(session, interaction, data.Options)
	case "suggestion":
		b.handleSuggestionCommand(session, interaction)
	case "setupcounters":
		if err := b.counters.Setup(ctx); err != nil {
			b.logger.Warn("counter setup failed", zap.Error(err))
			b.respond(session, interaction, "La création des salons de statistiques a échoué.", true)
			return
		}
		b.respond(session, interaction, "Les salons de statistiques ont été créés.", true)
	case "removecounters":
		if err := b.counters.Remove(ctx); err != nil {
			b.logger.Warn("counter removal failed", zap.Error(err))
			b.respond(session, interaction, "La suppression des salons de statistiques a échoué.", true)
			return
		}
		b.respond(session, interaction, "Les salons de statistiques ont été supprimés.", true)
	}
}

func (b *Bot) handlePunish(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, "Aucun membre fourni.", true)
		return
	}
	user := options[0].UserValue(session)
	if user == nil {
		b.respond(session, interaction, "Membre introuvable.", true)
		return
	}
	reason := ""
	if len(options) > 1 {
		reason = options[1].StringValue()
	}

	member, err := session.GuildMember(interaction.GuildID, user.ID)
	if err != nil {
		b.respond(session, interaction, "Membre introuvable sur le serveur.", true)
		return
	}

	target := moderation.Target{
		UserID:      user.ID,
		DisplayName: displayName(member),
		Tag:         user.String(),
		HasWarn1:    hasRole(member, b.cfg.Roles.Warn1),
		HasWarn2:    hasRole(member, b.cfg.Roles.Warn2),
	}

	action, err := b.policy.Punish(interaction.GuildID, target, interactionUser(interaction).String(), reason)
	if err != nil {
		b.logger.Warn("sanction failed", zap.String("user_id", user.ID), zap.Error(err))
		b.respond(session, interaction, "La sanction n'a pas pu être appliquée.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Sanction appliquée : %s.", action), true)
}

func (b *Bot) handlePurge(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, "Aucun nombre fourni.", true)
		return
	}
	amount := int(options[0].IntValue())
	if amount < 1 || amount > 100 {
		b.respond(session, interaction, "Le nombre doit être compris entre 1 et 100.", true)
		return
	}

	messages, err := session.ChannelMessages(interaction.ChannelID, amount, "", "", "")
	if err != nil {
		b.logger.Warn("purge message listing failed", zap.Error(err))
		b.respond(session, interaction, "La suppression des messages a échoué.", true)
		return
	}
	ids := make([]string, 0, len(messages))
	for _, message := range messages {
		ids = append(ids, message.ID)
	}
	if err := session.ChannelMessagesBulkDelete(interaction.ChannelID, ids); err != nil {
		b.logger.Warn("purge bulk delete failed", zap.Error(err))
		b.respond(session, interaction, "La suppression des messages a échoué.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("%d messages supprimés.", len(ids)), true)
}

func (b *Bot) handleSuggestionCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if b.cfg.Channels.Suggestions != "" && interaction.ChannelID != b.cfg.Channels.Suggestions {
		b.respond(session, interaction, fmt.Sprintf("Les suggestions se font dans <#%s>.", b.cfg.Channels.Suggestions), true)
		return
	}

	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: suggestionModalID,
			Title:    "Nouvelle suggestion",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "suggestion_title",
						Label:     "Titre",
						Style:     discordgo.TextInputShort,
						Required:  true,
						MaxLength: 100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "suggestion_description",
						Label:     "Description",
						Style:     discordgo.TextInputParagraph,
						Required:  true,
						MaxLength: 1000,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("suggestion modal failed", zap.Error(err))
	}
}

func (b *Bot) handleSuggestionSubmit(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ModalSubmitData()
	title := modalValue(data, "suggestion_title")
	description := modalValue(data, "suggestion_description")
	user := interactionUser(interaction)

	author := store.SuggestionAuthor{Name: user.String(), AvatarURL: user.AvatarURL("128")}
	record := store.SuggestionRecord{Title: title, Description: description, Author: author}

	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{suggestionEmbed(record)},
			Components: voteButtons(0, 0),
		},
	})
	if err != nil {
		b.logger.Warn("suggestion response failed", zap.Error(err))
		return
	}

	message, err := session.InteractionResponse(interaction.Interaction)
	if err != nil {
		b.logger.Warn("suggestion message lookup failed", zap.Error(err))
		return
	}

	if _, err := b.suggest.Create(message.ID, title, description, author); err != nil {
		b.logger.Error("suggestion persist failed", zap.String("message_id", message.ID), zap.Error(err))
		return
	}

	b.repostExplanation(session, interaction.ChannelID)
}

// repostExplanation keeps the voting how-to as the latest message in the
// suggestions channel: post a fresh copy, swap the stored pointer, delete
// the superseded one.
func (b *Bot) repostExplanation(session *discordgo.Session, channelID string) {
	message, err := session.ChannelMessageSend(channelID, explanationText)
	if err != nil {
		b.logger.Warn("explanation post failed", zap.Error(err))
		return
	}
	oldID, err := b.suggest.SwapExplanation(message.ID)
	if err != nil {
		b.logger.Warn("explanation pointer swap failed", zap.Error(err))
		return
	}
	if oldID == "" {
		return
	}
	if err := session.ChannelMessageDelete(channelID, oldID); err != nil {
		// The message may have been removed by hand already.
		b.logger.Debug("old explanation delete failed", zap.String("message_id", oldID), zap.Error(err))
	}
}

func (b *Bot) handleVote(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	var direction suggest.Direction
	switch interaction.MessageComponentData().CustomID {
	case "upvote":
		direction = suggest.DirectionUp
	case "downvote":
		direction = suggest.DirectionDown
	default:
		return
	}

	user := interactionUser(interaction)
	result, err := b.suggest.CastVote(interaction.Message.ID, user.ID, direction)
	if err != nil {
		b.logger.Warn("vote persist failed", zap.String("message_id", interaction.Message.ID), zap.Error(err))
		b.respond(session, interaction, "Votre vote n'a pas pu être enregistré.", true)
		return
	}

	switch result.Status {
	case suggest.StatusCounted:
		record, ok := b.suggest.Record(interaction.Message.ID)
		if !ok {
			return
		}
		err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{suggestionEmbed(record)},
				Components: voteButtons(result.Upvotes, result.Downvotes),
			},
		})
		if err != nil {
			b.logger.Warn("vote message update failed", zap.Error(err))
		}
	case suggest.StatusAlreadyVoted:
		b.respond(session, interaction, "Vous avez déjà voté pour cette suggestion.", true)
	case suggest.StatusUnknownRecord:
		b.logger.Debug("vote on untracked message", zap.String("message_id", interaction.Message.ID))
	}
}

func suggestionEmbed(record store.SuggestionRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: record.Author.Name, IconURL: record.Author.AvatarURL},
		Title:       record.Title,
		Description: record.Description,
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Pour", Value: fmt.Sprintf("%d", record.Upvotes), Inline: true},
			{Name: "Contre", Value: fmt.Sprintf("%d", record.Downvotes), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Suggestion de la communauté"},
	}
}

func voteButtons(upvotes, downvotes int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("%d", upvotes),
				Emoji:    discordgo.ComponentEmoji{Name: "👍"},
				Style:    discordgo.SecondaryButton,
				CustomID: "upvote",
			},
			discordgo.Button{
				Label:    fmt.Sprintf("%d", downvotes),
				Emoji:    discordgo.ComponentEmoji{Name: "👎"},
				Style:    discordgo.SecondaryButton,
				CustomID: "downvote",
			},
		}},
	}
}

func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			input, ok := inner.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}

func hasRole(member *discordgo.Member, roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
