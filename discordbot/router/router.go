package router

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotMatched is returned when unknown command is issued
	ErrNotMatched = errors.New("command not matched")
)

// Router implements routing dispatch
type Router struct {
	Routes             map[string]*Route
	Groups             []*Group
	GroupSorter        GroupSorterFunc
	DefaultRouteSorter RouteSorterFunc
	Middleware         []MiddlewareFunc
}

// NewRouter returns new router instance
func NewRouter() *Router {
	return &Router{
		Routes: make(map[string]*Route),
		GroupSorter: func(a, b *Group) bool {
			return a.Name >= b.Name
		},
		DefaultRouteSorter: func(a, b *Route) bool {
			return a.Name >= b.Name
		},
	}
}

// Dispatch finds route of application command interaction and executes it
func (router *Router) Dispatch(
	ctx context.Context,
	session *discordgo.Session,
	responder Responder,
	interaction *discordgo.Interaction,
) error {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	name, options := commandPath(interaction.ApplicationCommandData())

	route, ok := router.Routes[name]
	if !ok {
		return ErrNotMatched
	}

	if route.Baked == nil {
		route.Baked = router.bake(route)
	}

	return route.Baked(&Context{
		Context:     ctx,
		Session:     session,
		Interaction: interaction,
		Route:       route,
		Options:     options,
		Responder:   responder,
	})
}

func (router *Router) bake(route *Route) HandlerFunc {
	var middlewares []MiddlewareFunc

	middlewares = append(middlewares, router.Middleware...)

	for _, g := range route.Groups {
		middlewares = append(middlewares, g.Middleware...)
	}

	middlewares = append(middlewares, route.Middleware...)

	baked := route.Handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		baked = middlewares[i](baked)
	}

	return baked
}

func commandPath(data discordgo.ApplicationCommandInteractionData) (string, Options) {
	name := data.Name
	opts := data.Options

	for len(opts) == 1 && opts[0] != nil &&
		(opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
			opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		name += " " + opts[0].Name
		opts = opts[0].Options
	}

	options := make(Options, len(opts))

	for _, o := range opts {
		if o != nil {
			options[o.Name] = o
		}
	}

	return name, options
}

// Group returns group with given name
func (router *Router) Group(name string) (cand *Group) {
	cand = &Group{
		Name:        name,
		RouteSorter: router.DefaultRouteSorter,
		Router:      router,
		Data:        make(map[string]interface{}),
	}
	i := sort.Search(len(router.Groups), func(i int) bool {
		return router.GroupSorter(router.Groups[i], cand)
	})

	if i == len(router.Groups) || router.Groups[i].Name != name {
		router.Groups = append(router.Groups[:i], append([]*Group{cand}, router.Groups[i:]...)...)
	} else {
		cand = router.Groups[i]
	}

	return
}

// Route return route with given parameters
func (router *Router) Route(name, desc string, handler HandlerFunc) (route *Route) {
	var ok bool
	if route, ok = router.Routes[name]; !ok {
		route = &Route{
			Name:        name,
			Description: desc,
			Handler:     handler,
			Router:      router,
			Data:        make(map[string]interface{}),
		}
		router.Routes[name] = route
	}

	return
}

// On creates new route in given group
func (router *Router) On(group, name, desc string, handler HandlerFunc) (route *Route) {
	return router.Group(group).On(name, desc, handler)
}

// AppendMiddleware append middleware to end of the chain
func (router *Router) AppendMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append(router.Middleware, middleware)
}

// PrependMiddleware append middleware to beginning of the chain
func (router *Router) PrependMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append([]MiddlewareFunc{middleware}, router.Middleware...)
}

// Commands builds application command definitions of all routes.
// Routes named "command subcommand" are merged into a single command with subcommands.
func (router *Router) Commands() []*discordgo.ApplicationCommand {
	names := make([]string, 0, len(router.Routes))
	for name := range router.Routes {
		names = append(names, name)
	}

	sort.Strings(names)

	dm := false

	var commands []*discordgo.ApplicationCommand

	parents := make(map[string]*discordgo.ApplicationCommand)

	for _, name := range names {
		route := router.Routes[name]

		parent, sub, nested := strings.Cut(name, " ")
		if !nested {
			commands = append(commands, &discordgo.ApplicationCommand{
				Name:         route.Name,
				Description:  route.Description,
				Options:      route.Options,
				DMPermission: &dm,
			})

			continue
		}

		cmd, ok := parents[parent]
		if !ok {
			cmd = &discordgo.ApplicationCommand{
				Name:         parent,
				Description:  router.parentDescription(route, parent),
				DMPermission: &dm,
			}
			parents[parent] = cmd
			commands = append(commands, cmd)
		}

		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        sub,
			Description: route.Description,
			Options:     route.Options,
		})
	}

	return commands
}

func (router *Router) parentDescription(route *Route, parent string) string {
	for _, g := range route.Groups {
		if g.Description != "" {
			return g.Description
		}
	}

	return parent
}
