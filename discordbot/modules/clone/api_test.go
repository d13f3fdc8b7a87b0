package clone

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/eientei/jaroid-cloner/cloner"
	"github.com/eientei/jaroid-cloner/discordbot/bot"
	"github.com/eientei/jaroid-cloner/discordbot/config"
	"github.com/eientei/jaroid-cloner/discordbot/model"
	"github.com/eientei/jaroid-cloner/discordbot/modules/auth"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	botID         = "500"
	destinationID = "700"
	sourceID      = "600"
)

type fakeDestination struct {
	created []string
	next    int
}

func (f *fakeDestination) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return &discordgo.Guild{
		ID:      guildID,
		Name:    "target",
		OwnerID: botID,
	}, nil
}

func (f *fakeDestination) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (f *fakeDestination) GuildRoleCreate(
	_ string,
	data *discordgo.RoleParams,
	_ ...discordgo.RequestOption,
) (*discordgo.Role, error) {
	f.next++
	f.created = append(f.created, "role:"+data.Name)

	return &discordgo.Role{ID: strconv.Itoa(9000 + f.next), Name: data.Name}, nil
}

func (f *fakeDestination) GuildChannelCreateComplex(
	_ string,
	data discordgo.GuildChannelCreateData,
	_ ...discordgo.RequestOption,
) (*discordgo.Channel, error) {
	f.next++
	f.created = append(f.created, "channel:"+data.Name)

	return &discordgo.Channel{ID: strconv.Itoa(9000 + f.next), Name: data.Name, Type: data.Type}, nil
}

type fakeSource struct {
	err error
}

func (f *fakeSource) FetchRoles(context.Context, string) ([]cloner.RoleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []cloner.RoleRecord{
		{ID: "1", Name: "Mod", Position: 1},
		{ID: sourceID, Name: "@everyone", Everyone: true},
	}, nil
}

func (f *fakeSource) FetchChannels(context.Context, string) ([]cloner.ChannelRecord, error) {
	return []cloner.ChannelRecord{
		{ID: "10", Name: "General", Kind: cloner.KindCategory},
		{ID: "11", Name: "chat", Kind: cloner.KindText, ParentID: "10"},
	}, nil
}

type recordingResponder struct {
	deferred int
	messages []string
}

func (r *recordingResponder) Defer(bool) error {
	r.deferred++

	return nil
}

func (r *recordingResponder) Followup(content string, _ bool) error {
	r.messages = append(r.messages, content)

	return nil
}

func newTestBot(t *testing.T, dst *fakeDestination, src *fakeSource) (*bot.Bot, *string) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	var credential string

	mod := &module{
		api: dst,
		newSource: func(c string) (cloner.Source, error) {
			credential = c

			return src, nil
		},
		self: func() string {
			return botID
		},
	}

	b, err := bot.NewBot(bot.Options{
		Log: log,
		Config: &config.Root{
			Clone: config.Clone{Delay: time.Nanosecond},
		},
		Modules: []bot.Module{auth.New(), mod},
	})
	require.NoError(t, err)

	return b, &credential
}

func cloneCommand(perms int64) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "1",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "42"},
			Permissions: perms,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "clone_server",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "user_token", Type: discordgo.ApplicationCommandOptionString, Value: "user-token"},
				{Name: "source_id", Type: discordgo.ApplicationCommandOptionString, Value: sourceID},
				{Name: "destination_id", Type: discordgo.ApplicationCommandOptionString, Value: " " + destinationID},
			},
		},
	}
}

func TestCommandClone(t *testing.T) {
	t.Parallel()

	dst := &fakeDestination{}
	b, credential := newTestBot(t, dst, &fakeSource{})

	responder := &recordingResponder{}

	err := b.Router.Dispatch(context.Background(), nil, responder, cloneCommand(discordgo.PermissionAdministrator))
	require.NoError(t, err)

	assert.Equal(t, "user-token", *credential)
	assert.Equal(t, []string{"role:Mod", "channel:General", "channel:chat"}, dst.created)
	assert.Equal(t, 1, responder.deferred)

	require.Len(t, responder.messages, 7)
	assert.Contains(t, responder.messages[0], "**target**")
	assert.Equal(t, "📥 Fetched 1 roles", responder.messages[1])
	assert.Equal(t, "✅ roles: 1 created, 0 failed", responder.messages[2])
	assert.Equal(t, "📥 Fetched 2 channels", responder.messages[3])
	assert.Equal(t, "✅ categories: 1 created, 0 failed", responder.messages[4])
	assert.Equal(t, "✅ channels: 1 created, 0 failed", responder.messages[5])
	assert.True(t, strings.HasPrefix(responder.messages[6], "🏁 **Clone finished**, 3 items created"))

	for _, m := range responder.messages {
		assert.NotContains(t, m, "user-token")
	}
}

func TestCommandCloneReadFailure(t *testing.T) {
	t.Parallel()

	dst := &fakeDestination{}
	b, _ := newTestBot(t, dst, &fakeSource{err: cloner.ErrAuthenticationRejected})

	err := b.Router.Dispatch(context.Background(), nil, &recordingResponder{}, cloneCommand(discordgo.PermissionAdministrator))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cloner.ErrAuthenticationRejected))
	assert.Empty(t, dst.created)
}

func TestCommandCloneLocked(t *testing.T) {
	t.Parallel()

	dst := &fakeDestination{}
	b, _ := newTestBot(t, dst, &fakeSource{})

	release, err := b.Locker.Lock(destinationID, lockScope, time.Minute)
	require.NoError(t, err)

	defer release()

	err = b.Router.Dispatch(context.Background(), nil, &recordingResponder{}, cloneCommand(discordgo.PermissionAdministrator))
	assert.True(t, errors.Is(err, model.ErrCloneInProgress))
	assert.Empty(t, dst.created)
}

func TestCommandCloneRequiresAdministrator(t *testing.T) {
	t.Parallel()

	dst := &fakeDestination{}
	b, credential := newTestBot(t, dst, &fakeSource{})

	err := b.Router.Dispatch(context.Background(), nil, &recordingResponder{}, cloneCommand(discordgo.PermissionManageRoles))
	require.Error(t, err)
	assert.Empty(t, *credential)
	assert.Empty(t, dst.created)
}
