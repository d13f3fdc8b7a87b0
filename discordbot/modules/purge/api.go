// Package purge provides bot module for bulk removal of channel messages
package purge

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// BulkMaxAge is the age after which messages can no longer be deleted in bulk
const BulkMaxAge = 14*24*time.Hour - time.Minute

var (
	// ErrInvalidAmount is returned for amount outside of allowed range
	ErrInvalidAmount = errors.New("invalid amount of messages")
)

// Messages is the subset of discordgo session used to delete messages
type Messages interface {
	ChannelMessages(
		channelID string,
		limit int,
		beforeID, afterID, aroundID string,
		options ...discordgo.RequestOption,
	) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	api    Messages
	now    func() time.Time
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	if mod.api == nil && config.Discord != nil {
		mod.api = config.Discord
	}

	if mod.now == nil {
		mod.now = time.Now
	}

	minAmount := 1.0

	group := config.Router.Group("messages").SetDescription("message cleanup")
	group.Set(auth.RouteConfigKey, &auth.RouteConfig{
		Permissions: discordgo.PermissionManageMessages,
	})

	group.On("purge", "delete latest messages of this channel", mod.commandPurge).
		SetOptions(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "number of messages to delete",
			Required:    true,
			MinValue:    &minAmount,
			MaxValue:    float64(config.Config.Purge.Max),
		}).
		SetEphemeral(true)

	return nil
}

func (mod *module) Shutdown(*bot.Configuration) {

}

type result struct {
	Deleted int
	Failed  []error
}

func notFound(err error) bool {
	var rest *discordgo.RESTError

	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// purge deletes latest amount messages of channel, young messages in bulk and old ones one by one
func (mod *module) purge(ctx *router.Context, channelID string, amount int) (*result, error) {
	msgs, err := mod.api.ChannelMessages(channelID, amount, "", "", "", discordgo.WithContext(ctx.Context))
	if err != nil {
		return nil, err
	}

	res := &result{}

	var bulk, single []string

	for _, m := range msgs {
		if m == nil {
			continue
		}

		created, err := discordgo.SnowflakeTimestamp(m.ID)
		if err == nil && mod.now().Sub(created) < BulkMaxAge {
			bulk = append(bulk, m.ID)
		} else {
			single = append(single, m.ID)
		}
	}

	if len(bulk) == 1 {
		single = append(single, bulk...)
		bulk = nil
	}

	if len(bulk) > 0 {
		err = mod.api.ChannelMessagesBulkDelete(channelID, bulk, discordgo.WithContext(ctx.Context))
		if err != nil {
			return res, err
		}

		res.Deleted += len(bulk)
	}

	for _, id := range single {
		err = mod.api.ChannelMessageDelete(channelID, id, discordgo.WithContext(ctx.Context))

		switch {
		case err == nil, notFound(err):
			res.Deleted++
		default:
			mod.config.Log.WithError(err).WithField("message", id).Error("Deleting message")
			res.Failed = append(res.Failed, fmt.Errorf("message %s: %w", id, err))
		}
	}

	return res, nil
}

func (mod *module) commandPurge(ctx *router.Context) error {
	amount, ok := ctx.Options.Int("amount")
	if !ok || amount < 1 || amount > int64(mod.config.Config.Purge.Max) {
		return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidAmount, mod.config.Config.Purge.Max)
	}

	err := ctx.Defer()
	if err != nil {
		return err
	}

	res, err := mod.purge(ctx, ctx.ChannelID(), int(amount))
	if res != nil {
		mod.config.Metrics.DeleteObserved("messages", res.Deleted, nil)
		mod.config.Metrics.DeleteObserved("messages", len(res.Failed), errors.New("failed"))
	}

	if err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	msg := fmt.Sprintf("✅ **%d** messages deleted by <@%s>.", res.Deleted, ctx.UserID())

	if len(res.Failed) > 0 {
		msg += fmt.Sprintf("\n⚠️ %d messages could not be deleted.", len(res.Failed))
	}

	return ctx.Reply(msg)
}
