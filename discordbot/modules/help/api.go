// Package help provides bot module for command help message
package help

import (
	"strings"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/router"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
}

func (mod *module) Initialize(config *bot.Configuration) error {
	group := config.Router.Group("help").SetDescription("help & status")

	group.On("help", "prints help", mod.commandHelp).SetEphemeral(true)

	return nil
}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func renderName(r *router.Route) string {
	return "/" + r.Name
}

func (mod *module) commandHelp(ctx *router.Context) error {
	width := 0

	for _, v := range ctx.Route.Router.Routes {
		name := renderName(v)
		if len(name) > width {
			width = len(name)
		}
	}

	buf := &strings.Builder{}

	_, _ = buf.WriteString("```autohotkey\n")

	for _, g := range ctx.Route.Router.Groups {
		_, _ = buf.WriteString("\n==" + strings.ToUpper(g.Name) + "==")

		if len(g.Description) > 0 {
			_, _ = buf.WriteString(" ")
			_, _ = buf.WriteString(g.Description)
		}

		_, _ = buf.WriteString("\n")

		for _, v := range g.Routes {
			name := renderName(v)
			_, _ = buf.WriteString(strings.Repeat(" ", width-len(name)))
			_, _ = buf.WriteString(name)
			_, _ = buf.WriteString(": ")
			_, _ = buf.WriteString(v.Description)
			_, _ = buf.WriteString("\n")
		}
	}

	_, _ = buf.WriteString("```")

	return ctx.Reply(buf.String())
}
