// Package sync provides bot module registering slash commands with discord
package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// Commands is the subset of discordgo session used to register commands
type Commands interface {
	ApplicationCommandBulkOverwrite(
		appID string,
		guildID string,
		commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	api    Commands
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	if mod.api == nil && config.Discord != nil {
		mod.api = config.Discord
	}

	config.Router.Group("sync").
		SetDescription("slash command registration").
		Set(auth.RouteConfigKey, &auth.RouteConfig{
			Permissions: discordgo.PermissionAdministrator,
		}).
		On("sync", "register slash commands again", mod.commandSync).
		SetEphemeral(true)

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) Ready(config *bot.Configuration, ready *discordgo.Ready) {
	if ready.User == nil {
		return
	}

	n, err := mod.register(context.Background(), ready.User.ID)
	if err != nil {
		config.Log.WithError(err).Error("Registering commands")

		return
	}

	config.Log.WithField("commands", n).Info("Commands registered")
}

// register overwrites commands globally or in each configured guild, returning number of commands
func (mod *module) register(ctx context.Context, appID string) (int, error) {
	commands := mod.config.Router.Commands()

	guilds := mod.config.Config.Private.Guilds
	if len(guilds) == 0 {
		guilds = []string{""}
	}

	var failed []string

	for _, guildID := range guilds {
		registered, err := mod.api.ApplicationCommandBulkOverwrite(appID, guildID, commands, discordgo.WithContext(ctx))
		if err != nil {
			mod.config.Log.WithError(err).WithField("guild", guildID).Error("Overwriting commands")

			failed = append(failed, guildName(guildID))

			continue
		}

		mod.config.Log.WithField("guild", guildName(guildID)).WithField("commands", len(registered)).Debug("Commands overwritten")
	}

	if len(failed) > 0 {
		return 0, fmt.Errorf("registering commands failed for %s", strings.Join(failed, ", "))
	}

	return len(commands), nil
}

func guildName(guildID string) string {
	if guildID == "" {
		return "global"
	}

	return guildID
}

func (mod *module) commandSync(ctx *router.Context) error {
	err := ctx.Defer()
	if err != nil {
		return err
	}

	n, err := mod.register(ctx.Context, ctx.Interaction.AppID)
	if err != nil {
		return err
	}

	return ctx.Reply(fmt.Sprintf("✅ %d commands synchronized.", n))
}
