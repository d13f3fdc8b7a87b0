// Package auth provides bot module middleware for authorization of bot commands
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// RouteConfigKey is used in route/group data configuration
const RouteConfigKey = "auth"

var (
	// ErrNotAuthorized is returned when user is not authorized to execute this command
	ErrNotAuthorized = errors.New("not authorized")
)

var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageServer, "Manage Server"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionManageChannels, "Manage Channels"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
}

// RouteConfig holds authorization requirements for given route or route group
type RouteConfig struct {
	Permissions int64
}

// Missing returns permissions of requirement absent from granted set, administrators miss nothing
func Missing(required, granted int64) int64 {
	if granted&discordgo.PermissionAdministrator != 0 {
		return 0
	}

	return required &^ granted
}

// PermissionNames renders permission bits as human readable names
func PermissionNames(perms int64) string {
	var names []string

	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			names = append(names, p.name)
			perms &^= p.bit
		}
	}

	if perms != 0 {
		names = append(names, fmt.Sprintf("0x%x", perms))
	}

	return strings.Join(names, ", ")
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.AppendMiddleware(mod.middlewareAuth)

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) middlewareAuth(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		raw := ctx.Route.Get(RouteConfigKey)

		var auth *RouteConfig

		switch v := raw.(type) {
		case *RouteConfig:
			auth = v
		case RouteConfig:
			auth = &v
		default:
			return handler(ctx)
		}

		if ctx.GuildID() == "" {
			return fmt.Errorf("%w: command is available only on servers", ErrNotAuthorized)
		}

		missing := Missing(auth.Permissions, ctx.Permissions())
		if missing == 0 {
			return handler(ctx)
		}

		return fmt.Errorf("%w: missing %s permission", ErrNotAuthorized, PermissionNames(missing))
	}
}
