// Package clone provides bot module copying roles and channels of another server
package clone

import (
	"fmt"
	"strings"

	"github.com/eientei/jaroid-cloner/cloner"
	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const lockScope = "clone"

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config    *bot.Configuration
	api       cloner.Destination
	newSource func(credential string) (cloner.Source, error)
	self      func() string
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	if mod.api == nil && config.Discord != nil {
		mod.api = config.Discord
	}

	if mod.newSource == nil {
		mod.newSource = func(credential string) (cloner.Source, error) {
			return cloner.NewDirectory(credential)
		}
	}

	if mod.self == nil {
		mod.self = func() string {
			return config.Discord.State.User.ID
		}
	}

	group := config.Router.Group("clone").SetDescription("server structure cloning")
	group.Set(auth.RouteConfigKey, &auth.RouteConfig{
		Permissions: discordgo.PermissionAdministrator,
	})

	group.On("clone_server", "copy roles, categories and channels of a server", mod.commandClone).
		SetOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "user_token",
				Description: "token of an account that can see the source server",
				Required:    true,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "source_id",
				Description: "id of the server to copy from",
				Required:    true,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "destination_id",
				Description: "id of the server to copy into",
				Required:    true,
			},
		).
		Secret("user_token").
		SetEphemeral(true)

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) commandClone(ctx *router.Context) error {
	sourceID := strings.TrimSpace(ctx.Options.String("source_id"))
	destinationID := strings.TrimSpace(ctx.Options.String("destination_id"))

	err := ctx.Defer()
	if err != nil {
		return err
	}

	release, err := mod.config.Locker.Lock(destinationID, lockScope, mod.config.Config.Clone.LockTTL)
	if err != nil {
		return err
	}

	defer release()

	source, err := mod.newSource(ctx.Options.String("user_token"))
	if err != nil {
		return err
	}

	log := mod.config.Log.WithFields(logrus.Fields{
		"source":      sourceID,
		"destination": destinationID,
		"user":        ctx.UserID(),
	})

	pipeline := &cloner.Pipeline{
		Writer: cloner.Writer{
			API: mod.api,
			Log: log,
			Observer: func(phase cloner.Phase, err error) {
				mod.config.Metrics.WriteObserved(string(phase), err)
			},
			Reason: mod.config.Config.Clone.Reason,
			Delay:  mod.config.Config.Clone.Delay,
		},
		Source:  source,
		Notify:  mod.notifier(ctx, log),
		ActorID: mod.self(),
	}

	report, err := pipeline.Run(ctx.Context, sourceID, destinationID)
	if err != nil {
		if report != nil && report.Created() > 0 {
			return fmt.Errorf("clone aborted: %w\n\n%s", err, report.Summary())
		}

		return fmt.Errorf("clone aborted: %w", err)
	}

	return ctx.Reply(fmt.Sprintf("🏁 **Clone finished**, %d items created\n\n%s", report.Created(), report.Summary()))
}

func (mod *module) notifier(ctx *router.Context, log logrus.FieldLogger) cloner.NotifyFunc {
	return func(stage cloner.Stage, report *cloner.Report) {
		msg := progressMessage(stage, report)
		if msg == "" {
			return
		}

		err := ctx.Reply(msg)
		if err != nil {
			log.WithError(err).Warn("Sending progress")
		}
	}
}

func progressMessage(stage cloner.Stage, report *cloner.Report) string {
	switch stage {
	case cloner.StageStarted:
		return fmt.Sprintf("🔄 Cloning server `%s` into **%s**", report.SourceID, report.DestinationName)
	case cloner.StageRolesFetched:
		return fmt.Sprintf("📥 Fetched %d roles", report.RolesFetched)
	case cloner.StageRolesCreated:
		return "✅ " + report.Roles.String()
	case cloner.StageChannelsFetched:
		return fmt.Sprintf("📥 Fetched %d channels", report.ChannelsFetched)
	case cloner.StageCategoriesCreated:
		return "✅ " + report.Categories.String()
	case cloner.StageChannelsCreated:
		return "✅ " + report.Channels.String()
	default:
		return ""
	}
}
