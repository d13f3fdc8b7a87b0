package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Bot is a main implementation of bot
type Bot struct {
	Configuration
	readyModules []ReadyModule
}

// Serve starts bot serving loop and blocks until exit
func (bot *Bot) Serve() error {
	err := bot.Discord.Open()
	if err != nil {
		return err
	}

	bot.Log.Info("Running")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if bot.Metrics != nil && bot.Config.Private.Metrics.Address != "" {
		go func() {
			err := bot.Metrics.Serve(ctx, bot.Config.Private.Metrics.Address, bot.Log)
			if err != nil {
				bot.Log.WithError(err).Error("Serving metrics")
			}
		}()
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	for _, m := range bot.Modules {
		m.Shutdown(&bot.Configuration)
	}

	return bot.Discord.Close()
}
