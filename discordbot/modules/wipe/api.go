// Package wipe provides bot module for mass removal of server channels and roles
package wipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/eientei/jaroid-cloner/cloner"
	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// ErrNoBotRole is returned when bot has no role to compare hierarchy against
var ErrNoBotRole = errors.New("bot has no role on this server")

// Guild is the subset of discordgo session used to delete server structure
type Guild interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	api    Guild
	self   func() string
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	if mod.api == nil && config.Discord != nil {
		mod.api = config.Discord
	}

	if mod.self == nil {
		mod.self = func() string {
			return config.Discord.State.User.ID
		}
	}

	group := config.Router.Group("wipe").SetDescription("mass deletion, irreversible")

	group.On("delete_channels", "delete every channel of this server", mod.commandDeleteChannels).
		SetEphemeral(true).
		Set(auth.RouteConfigKey, &auth.RouteConfig{
			Permissions: discordgo.PermissionManageChannels,
		})

	group.On("delete_roles", "delete every role below the bot's highest role", mod.commandDeleteRoles).
		SetEphemeral(true).
		Set(auth.RouteConfigKey, &auth.RouteConfig{
			Permissions: discordgo.PermissionManageRoles,
		})

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

type deletion struct {
	kind     string
	deleted  int
	failures []string
}

func (d *deletion) fail(name string, err error) {
	d.failures = append(d.failures, fmt.Sprintf("❌ %s (%v)", name, err))
}

func (d *deletion) String() string {
	buf := &strings.Builder{}

	_, _ = fmt.Fprintf(buf, "✅ **%d** %s deleted.", d.deleted, d.kind)

	if len(d.failures) > 0 {
		_, _ = fmt.Fprintf(buf, "\n\n⚠️ **%d failed:**\n", len(d.failures))
		_, _ = buf.WriteString(strings.Join(d.failures, "\n"))
	}

	return buf.String()
}

func (mod *module) observe(d *deletion) {
	mod.config.Metrics.DeleteObserved(d.kind, d.deleted, nil)
	mod.config.Metrics.DeleteObserved(d.kind, len(d.failures), errors.New("failed"))
}

func (mod *module) deleteChannels(ctx context.Context, guildID string, channels []*discordgo.Channel) *deletion {
	d := &deletion{kind: "channels"}

	for _, c := range channels {
		if c == nil {
			continue
		}

		_, err := mod.api.ChannelDelete(c.ID, discordgo.WithContext(ctx))
		if err != nil {
			mod.config.Log.WithError(err).WithField("guild", guildID).WithField("channel", c.Name).Error("Deleting channel")
			d.fail(c.Name, err)

			continue
		}

		d.deleted++
	}

	return d
}

func (mod *module) commandDeleteChannels(ctx *router.Context) error {
	err := ctx.Defer()
	if err != nil {
		return err
	}

	channels, err := mod.api.GuildChannels(ctx.GuildID(), discordgo.WithContext(ctx.Context))
	if err != nil {
		return fmt.Errorf("listing channels: %w", err)
	}

	err = ctx.Reply(fmt.Sprintf("⚠️ **WARNING:** deleting %d channels. This is irreversible.", len(channels)))
	if err != nil {
		return err
	}

	d := mod.deleteChannels(ctx.Context, ctx.GuildID(), channels)
	mod.observe(d)

	err = ctx.Reply(d.String())
	if err != nil {
		mod.config.Log.WithError(err).Warn("Reporting deleted channels")
	}

	return nil
}

// deletableRoles returns roles strictly below top, excluding @everyone and managed roles, highest first
func deletableRoles(guildID string, roles []*discordgo.Role, top *discordgo.Role) []*discordgo.Role {
	var res []*discordgo.Role

	for _, r := range roles {
		if r == nil || r.ID == guildID || r.Managed || r.Position >= top.Position {
			continue
		}

		res = append(res, r)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Position > res[j].Position
	})

	return res
}

func (mod *module) commandDeleteRoles(ctx *router.Context) error {
	err := ctx.Defer()
	if err != nil {
		return err
	}

	guildID := ctx.GuildID()

	roles, err := mod.api.GuildRoles(guildID, discordgo.WithContext(ctx.Context))
	if err != nil {
		return fmt.Errorf("listing roles: %w", err)
	}

	member, err := mod.api.GuildMember(guildID, mod.self(), discordgo.WithContext(ctx.Context))
	if err != nil {
		return fmt.Errorf("loading bot member: %w", err)
	}

	top := cloner.HighestRole(&discordgo.Guild{ID: guildID, Roles: roles}, member)
	if top == nil {
		return ErrNoBotRole
	}

	d := &deletion{kind: "roles"}

	for _, r := range deletableRoles(guildID, roles, top) {
		err = mod.api.GuildRoleDelete(guildID, r.ID, discordgo.WithContext(ctx.Context))
		if err != nil {
			mod.config.Log.WithError(err).WithField("guild", guildID).WithField("role", r.Name).Error("Deleting role")
			d.fail(r.Name, err)

			continue
		}

		d.deleted++
	}

	mod.observe(d)

	return ctx.Reply(d.String())
}
