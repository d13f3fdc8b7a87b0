// Package reply provides bot module for logging command results and replying with errors
package reply

import (
	"errors"
	"time"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/router"
)

const emojiX = "❌"

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	config.Router.PrependMiddleware(mod.middlewareReply)

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) middlewareReply(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		start := time.Now()

		origerr := handler(ctx)

		log := mod.config.Log.
			WithFields(ctx.Route.LogFields(ctx.Options)).
			WithField("guild", ctx.GuildID()).
			WithField("user", ctx.UserID()).
			WithField("elapsed", time.Since(start))

		if errors.Is(origerr, bot.ErrNoReply) {
			origerr = nil
		}

		mod.config.Metrics.CommandObserved(ctx.Route.Name, origerr)

		if origerr == nil {
			log.Info("Command executed")

			return nil
		}

		log.WithError(origerr).Error("executing command returned error")

		err := ctx.Reply(emojiX + " " + origerr.Error())
		if err != nil {
			mod.config.Log.WithError(err).Error("Replying with error status")
		}

		return origerr
	}
}
