package purge

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/config"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const discordEpoch = 1420070400000

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func snowflake(t time.Time, seq int) string {
	ms := t.UnixNano()/int64(time.Millisecond) - discordEpoch

	return strconv.FormatInt(ms<<22|int64(seq), 10)
}

type fakeMessages struct {
	messages  []*discordgo.Message
	limit     int
	bulk      [][]string
	single    []string
	singleErr map[string]error
}

func (f *fakeMessages) ChannelMessages(
	_ string,
	limit int,
	_, _, _ string,
	_ ...discordgo.RequestOption,
) ([]*discordgo.Message, error) {
	f.limit = limit

	if limit < len(f.messages) {
		return f.messages[:limit], nil
	}

	return f.messages, nil
}

func (f *fakeMessages) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	f.bulk = append(f.bulk, messages)

	return nil
}

func (f *fakeMessages) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.single = append(f.single, messageID)

	return f.singleErr[messageID]
}

type recordingResponder struct {
	messages []string
}

func (r *recordingResponder) Defer(bool) error { return nil }

func (r *recordingResponder) Followup(content string, _ bool) error {
	r.messages = append(r.messages, content)

	return nil
}

func newTestBot(t *testing.T, api *fakeMessages) *bot.Bot {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	b, err := bot.NewBot(bot.Options{
		Log:    log,
		Config: &config.Root{},
		Modules: []bot.Module{
			auth.New(),
			&module{
				api: api,
				now: func() time.Time {
					return testNow
				},
			},
		},
	})
	require.NoError(t, err)

	return b
}

func purgeCommand(amount float64) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "1",
		ChannelID: "2",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "42"},
			Permissions: discordgo.PermissionManageMessages,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "purge",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: amount},
			},
		},
	}
}

func TestCommandPurge(t *testing.T) {
	t.Parallel()

	young1 := snowflake(testNow.Add(-time.Hour), 1)
	young2 := snowflake(testNow.Add(-2*time.Hour), 2)
	old := snowflake(testNow.Add(-20*24*time.Hour), 3)
	gone := snowflake(testNow.Add(-30*24*time.Hour), 4)

	api := &fakeMessages{
		messages: []*discordgo.Message{{ID: young1}, {ID: young2}, {ID: old}, {ID: gone}},
		singleErr: map[string]error{
			gone: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}},
		},
	}

	b := newTestBot(t, api)
	responder := &recordingResponder{}

	err := b.Router.Dispatch(context.Background(), nil, responder, purgeCommand(10))
	require.NoError(t, err)

	assert.Equal(t, 10, api.limit)
	assert.Equal(t, [][]string{{young1, young2}}, api.bulk)
	assert.Equal(t, []string{old, gone}, api.single)
	assert.Equal(t, []string{"✅ **4** messages deleted by <@42>."}, responder.messages)
}

func TestCommandPurgeSingleYoungMessage(t *testing.T) {
	t.Parallel()

	young := snowflake(testNow.Add(-time.Minute), 1)

	api := &fakeMessages{
		messages: []*discordgo.Message{{ID: young}},
	}

	b := newTestBot(t, api)

	err := b.Router.Dispatch(context.Background(), nil, &recordingResponder{}, purgeCommand(1))
	require.NoError(t, err)

	assert.Empty(t, api.bulk)
	assert.Equal(t, []string{young}, api.single)
}

func TestCommandPurgeFailures(t *testing.T) {
	t.Parallel()

	old := snowflake(testNow.Add(-20*24*time.Hour), 1)

	api := &fakeMessages{
		messages: []*discordgo.Message{{ID: old}},
		singleErr: map[string]error{
			old: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}},
		},
	}

	b := newTestBot(t, api)
	responder := &recordingResponder{}

	err := b.Router.Dispatch(context.Background(), nil, responder, purgeCommand(5))
	require.NoError(t, err)
	require.Len(t, responder.messages, 1)
	assert.Contains(t, responder.messages[0], "**0** messages deleted")
	assert.Contains(t, responder.messages[0], "1 messages could not be deleted")
}

func TestCommandPurgeInvalidAmount(t *testing.T) {
	t.Parallel()

	api := &fakeMessages{}
	b := newTestBot(t, api)

	for _, amount := range []float64{0, 101} {
		err := b.Router.Dispatch(context.Background(), nil, &recordingResponder{}, purgeCommand(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	assert.Zero(t, api.limit)
}
