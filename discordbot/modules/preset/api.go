// Package preset provides bot module creating ordered role sets and managing saved role presets
package preset

import (
	"errors"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNoRoles is returned when role list contains no names
	ErrNoRoles = errors.New("no valid role names given")
	// ErrEmptyName is returned when preset name is blank
	ErrEmptyName = errors.New("preset name is empty")
	// ErrNoRolesCreated is returned when every role creation failed
	ErrNoRolesCreated = errors.New("no roles were created")
	// ErrBotRoleNotFound is returned when bot top role cannot be located for reordering
	ErrBotRoleNotFound = errors.New("bot role not found")
)

// Roles is the subset of discordgo session used to create and order roles
type Roles interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleReorder(guildID string, roles []*discordgo.Role, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	api    Roles
	self   func() string
}

func roleListOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "roles",
		Description: "role names separated by comma or new line, highest first",
		Required:    required,
	}
}

func nameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "preset name",
		Required:    true,
	}
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

	manageRoles := &auth.RouteConfig{
		Permissions: discordgo.PermissionManageRoles,
	}

	config.Router.Group("roles").
		SetDescription("role creation").
		Set(auth.RouteConfigKey, manageRoles).
		On("create_roles", "create roles from a list and place them right below the bot", mod.commandCreateRoles).
		SetOptions(roleListOption(true))

	group := config.Router.Group("preset").SetDescription("role presets for quick role creation")
	group.Set(auth.RouteConfigKey, manageRoles)

	group.On("preset list", "list saved role presets", mod.commandPresetList).
		SetEphemeral(true)

	group.On("preset save", "save a list of roles as a preset", mod.commandPresetSave).
		SetOptions(nameOption(), roleListOption(true)).
		SetEphemeral(true).
		Set(auth.RouteConfigKey, &auth.RouteConfig{
			Permissions: discordgo.PermissionAdministrator,
		})

	group.On("preset use", "create roles of a saved preset", mod.commandPresetUse).
		SetOptions(nameOption())

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}
