package main

import (
	"errors"
	"os"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/config"
	"github.com/eientei/jaroid-cloner/discordbot/metrics"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"
	"github.com/eientei/jaroid-cloner/discordbot/modules/clone"
	"github.com/eientei/jaroid-cloner/discordbot/modules/help"
	"github.com/eientei/jaroid-cloner/discordbot/modules/preset"
	"github.com/eientei/jaroid-cloner/discordbot/modules/purge"
	"github.com/eientei/jaroid-cloner/discordbot/modules/reply"
	"github.com/eientei/jaroid-cloner/discordbot/modules/sync"
	"github.com/eientei/jaroid-cloner/discordbot/modules/wipe"

	"github.com/bwmarrin/discordgo"
	"github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

var opts struct {
	Config  string   `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
	EnvFile []string `short:"e" long:"env-file" default:".env" description:"Environment file with DISCORD_TOKEN"`
}

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	configRoot, err := config.Load(opts.Config, opts.EnvFile...)
	if err != nil {
		logrus.WithError(err).Fatal("Loading configuration")
	}

	log, err := bot.NewLogger(configRoot.Private.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Configuring logger")
	}

	dg, err := discordgo.New("Bot " + configRoot.Private.Token)
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds)

	var client *redis.Client

	if configRoot.Private.Redis.Address != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     configRoot.Private.Redis.Address,
			Password: configRoot.Private.Redis.Password,
			DB:       configRoot.Private.Redis.DB,
		})

		err = client.Ping().Err()
		if err != nil {
			log.WithError(err).Fatal("Connecting to redis")
		}
	}

	b, err := bot.NewBot(bot.Options{
		Discord: dg,
		Client:  client,
		Config:  configRoot,
		Log:     log,
		Metrics: metrics.New(),
		Modules: []bot.Module{
			reply.New(),
			auth.New(),
			help.New(),
			clone.New(),
			purge.New(),
			wipe.New(),
			preset.New(),
			sync.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	err = b.Serve()
	if err != nil {
		log.Fatal(err)
	}
}
