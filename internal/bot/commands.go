package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	moderatePerm := int64(discordgo.PermissionKickMembers)
	managePerm := int64(discordgo.PermissionManageMessages)
	channelsPerm := int64(discordgo.PermissionManageChannels)
	minAmount := float64(1)
	maxAmount := float64(100)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "punish",
			Description:              "Sanctionner un membre (avertissement puis bannissement)",
			DefaultMemberPermissions: &moderatePerm,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "membre",
					Description: "Le membre à sanctionner",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "raison",
					Description: "La raison de la sanction",
					Required:    false,
				},
			},
		},
		{
			Name:                     "purge",
			Description:              "Supprimer les derniers messages du salon",
			DefaultMemberPermissions: &managePerm,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "nombre",
					Description: "Nombre de messages à supprimer (1 à 100)",
					Required:    true,
					MinValue:    &minAmount,
					MaxValue:    maxAmount,
				},
			},
		},
		{
			Name:        "suggestion",
			Description: "Proposer une suggestion pour le serveur",
		},
		{
			Name:                     "setupcounters",
			Description:              "Créer les salons de statistiques",
			DefaultMemberPermissions: &channelsPerm,
		},
		{
			Name:                     "removecounters",
			Description:              "Supprimer les salons de statistiques",
			DefaultMemberPermissions: &channelsPerm,
		},
	}

	appID := b.session.State.User.ID
	guildID := b.cfg.GuildID
	existing, err := b.session.ApplicationCommands(appID, guildID)
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, guildID, current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, guildID, cmd.ID)
	}
	return nil
}
