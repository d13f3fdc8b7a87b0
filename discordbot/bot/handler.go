package bot

import (
	"context"
	"errors"

	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) handlerReady(_ *discordgo.Session, ready *discordgo.Ready) {
	if ready.User != nil {
		bot.Log.
			WithField("user", ready.User.Username).
			WithField("invite", InviteURL(ready.User.ID, discordgo.PermissionAdministrator)).
			Info("Logged in")
	}

	for _, m := range bot.readyModules {
		m.Ready(&bot.Configuration, ready)
	}
}

func (bot *Bot) handlerInteractionCreate(session *discordgo.Session, interactionCreate *discordgo.InteractionCreate) {
	interaction := interactionCreate.Interaction

	err := bot.Router.Dispatch(context.Background(), session, router.NewResponder(session, interaction), interaction)
	if errors.Is(err, router.ErrNotMatched) {
		bot.Log.WithField("command", interaction.ApplicationCommandData().Name).Warn("Unknown command")
	}
}
