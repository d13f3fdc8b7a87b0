// Package router provides slash command router
package router

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Redacted replaces secret option values in logs
const Redacted = "<redacted>"

// GroupSorterFunc provides sorting for groups
type GroupSorterFunc func(a, b *Group) bool

// RouteSorterFunc provides sorting for routes
type RouteSorterFunc func(a, b *Route) bool

// MiddlewareFunc implements command wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements command execution
type HandlerFunc func(ctx *Context) error

// Options are values of invoked command options by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// String returns string option value or empty string
func (opts Options) String(name string) string {
	opt, ok := opts[name]
	if !ok || opt == nil {
		return ""
	}

	s, _ := opt.Value.(string)

	return s
}

// Int returns integer option value
func (opts Options) Int(name string) (int64, bool) {
	opt, ok := opts[name]
	if !ok || opt == nil {
		return 0, false
	}

	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Route describes command route, name of subcommand route is "command subcommand"
type Route struct {
	Router      *Router
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
	Secrets     []string
	Ephemeral   bool
	Handler     HandlerFunc
	Baked       HandlerFunc
	Data        map[string]interface{}
	Middleware  []MiddlewareFunc
	Groups      []*Group
}

// Set sets route config value
func (route *Route) Set(k string, v interface{}) *Route {
	route.Data[k] = v

	return route
}

// Get returns route (or any of parent groups) config value
func (route *Route) Get(k string) interface{} {
	if v, ok := route.Data[k]; ok {
		return v
	}

	for _, g := range route.Groups {
		if v, ok := g.Data[k]; ok {
			return v
		}
	}

	return nil
}

// SetOptions sets command options
func (route *Route) SetOptions(options ...*discordgo.ApplicationCommandOption) *Route {
	route.Options = options

	return route
}

// Secret marks options which values must never reach logs
func (route *Route) Secret(names ...string) *Route {
	route.Secrets = append(route.Secrets, names...)

	return route
}

// SetEphemeral makes all replies of route visible only to invoking user
func (route *Route) SetEphemeral(ephemeral bool) *Route {
	route.Ephemeral = ephemeral

	return route
}

// LogFields renders option values for logging with secret values redacted
func (route *Route) LogFields(opts Options) logrus.Fields {
	fields := logrus.Fields{
		"command": route.Name,
	}

	for name, opt := range opts {
		if opt == nil {
			continue
		}

		if route.isSecret(name) {
			fields["option."+name] = Redacted

			continue
		}

		fields["option."+name] = opt.Value
	}

	return fields
}

func (route *Route) isSecret(name string) bool {
	for _, s := range route.Secrets {
		if s == name {
			return true
		}
	}

	return false
}

// Responder sends interaction replies
type Responder interface {
	Defer(ephemeral bool) error
	Followup(content string, ephemeral bool) error
}

// Context simplifies request handling
type Context struct {
	Context     context.Context
	Session     *discordgo.Session
	Interaction *discordgo.Interaction
	Route       *Route
	Options     Options
	Responder   Responder
	deferred    bool
}

// GuildID returns guild command was invoked in
func (ctx *Context) GuildID() string {
	return ctx.Interaction.GuildID
}

// ChannelID returns channel command was invoked in
func (ctx *Context) ChannelID() string {
	return ctx.Interaction.ChannelID
}

// UserID returns invoking user
func (ctx *Context) UserID() string {
	switch {
	case ctx.Interaction.Member != nil && ctx.Interaction.Member.User != nil:
		return ctx.Interaction.Member.User.ID
	case ctx.Interaction.User != nil:
		return ctx.Interaction.User.ID
	default:
		return ""
	}
}

// Permissions returns invoking member permissions in the invoking channel
func (ctx *Context) Permissions() int64 {
	if ctx.Interaction.Member == nil {
		return 0
	}

	return ctx.Interaction.Member.Permissions
}

// Defer acknowledges interaction, subsequent calls are no-op
func (ctx *Context) Defer() error {
	if ctx.deferred {
		return nil
	}

	err := ctx.Responder.Defer(ctx.Route.Ephemeral)
	if err != nil {
		return err
	}

	ctx.deferred = true

	return nil
}

// Reply sends follow-up message, splitting it into several when it exceeds message limit
func (ctx *Context) Reply(content string) error {
	err := ctx.Defer()
	if err != nil {
		return err
	}

	for _, part := range SplitMessage(content, MessageLimit) {
		err = ctx.Responder.Followup(part, ctx.Route.Ephemeral)
		if err != nil {
			return err
		}
	}

	return nil
}
