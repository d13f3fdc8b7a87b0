package reply

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/metrics"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResponder struct {
	messages []string
}

func (r *recordingResponder) Defer(bool) error { return nil }

func (r *recordingResponder) Followup(content string, _ bool) error {
	r.messages = append(r.messages, content)

	return nil
}

func TestMiddlewareReply(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)

	m := metrics.New()

	b, err := bot.NewBot(bot.Options{
		Log:     log,
		Metrics: m,
		Modules: []bot.Module{New()},
	})
	require.NoError(t, err)

	b.Router.On("clone", "clone_server", "clones", func(ctx *router.Context) error {
		return errors.New("boom")
	}).Secret("user_token")

	b.Router.On("help", "help", "help", func(ctx *router.Context) error {
		return bot.ErrNoReply
	})

	responder := &recordingResponder{}

	err = b.Router.Dispatch(context.Background(), nil, responder, &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "clone_server",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "user_token", Type: discordgo.ApplicationCommandOptionString, Value: "secret-value"},
			},
		},
	})
	require.Error(t, err)

	assert.Equal(t, []string{emojiX + " boom"}, responder.messages)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, router.Redacted, hook.LastEntry().Data["option.user_token"])

	for _, e := range hook.AllEntries() {
		for _, v := range e.Data {
			assert.NotEqual(t, "secret-value", v)
		}
	}

	err = b.Router.Dispatch(context.Background(), nil, responder, &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "help"},
	})
	require.NoError(t, err)
	assert.Len(t, responder.messages, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("clone_server", metrics.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("help", metrics.ResultOK)))
}
