// Package bot provides main bot implementation
package bot

import (
	"errors"

	"github.com/eientei/jaroid-cloner/discordbot/config"
	"github.com/eientei/jaroid-cloner/discordbot/metrics"
	"github.com/eientei/jaroid-cloner/discordbot/model"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
)

// ErrNoReply special error value to avoid auto-reply
var ErrNoReply = errors.New("noreply")

// Options provide configuration options for bot
type Options struct {
	Discord *discordgo.Session
	Client  *redis.Client
	Config  *config.Root
	Log     *logrus.Logger
	Metrics *metrics.Metrics
	Modules []Module
}

// Configuration store configuration for bot
type Configuration struct {
	Discord *discordgo.Session
	Client  *redis.Client
	Config  *config.Root
	Log     *logrus.Logger
	Router  *router.Router
	Presets *model.PresetStore
	Locker  model.Locker
	Metrics *metrics.Metrics
	Modules []Module
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Initialize(bot *Configuration) error
	Shutdown(bot *Configuration)
}

// ReadyModule interface marks modules interested in gateway session readiness
type ReadyModule interface {
	Ready(bot *Configuration, ready *discordgo.Ready)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Config == nil {
		options.Config = &config.Root{}
	}

	options.Config.Defaults()

	var locker model.Locker = model.NewMemoryLocker()
	if options.Client != nil {
		locker = &model.RedisLocker{
			Client: options.Client,
		}
	}

	var readyModules []ReadyModule

	for _, m := range options.Modules {
		rm, ok := m.(ReadyModule)
		if ok {
			readyModules = append(readyModules, rm)
		}
	}

	bot := &Bot{
		Configuration: Configuration{
			Discord: options.Discord,
			Client:  options.Client,
			Config:  options.Config,
			Log:     options.Log,
			Router:  router.NewRouter(),
			Presets: model.NewPresetStore(options.Config.Private.Presets, options.Log),
			Locker:  locker,
			Metrics: options.Metrics,
			Modules: options.Modules,
		},
		readyModules: readyModules,
	}

	for _, m := range bot.Modules {
		err := m.Initialize(&bot.Configuration)
		if err != nil {
			return nil, err
		}
	}

	if bot.Discord != nil {
		bot.Discord.AddHandler(bot.handlerReady)
		bot.Discord.AddHandler(bot.handlerInteractionCreate)
	}

	return bot, nil
}
