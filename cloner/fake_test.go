package cloner

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	testActor       = "500"
	testDestination = "700"
	testSource      = "600"
)

type fakeDestination struct {
	guild     *discordgo.Guild
	member    *discordgo.Member
	guildErr  error
	memberErr error

	roleErrs    map[string]error
	channelErrs map[string]error

	calls    []string
	roles    []*discordgo.RoleParams
	channels []discordgo.GuildChannelCreateData
	created  map[string]*discordgo.Channel
	next     int
}

func newFakeDestination(admin bool) *fakeDestination {
	var perms int64
	if admin {
		perms = discordgo.PermissionAdministrator
	}

	return &fakeDestination{
		guild: &discordgo.Guild{
			ID:      testDestination,
			Name:    "destination",
			OwnerID: "1",
			Roles: []*discordgo.Role{
				{ID: testDestination, Name: "@everyone"},
				{ID: "701", Name: "bot", Permissions: perms, Position: 5},
			},
		},
		member: &discordgo.Member{
			User:  &discordgo.User{ID: testActor},
			Roles: []string{"701"},
		},
		roleErrs:    make(map[string]error),
		channelErrs: make(map[string]error),
		created:     make(map[string]*discordgo.Channel),
		next:        9000,
	}
}

func (f *fakeDestination) id() string {
	f.next++

	return strconv.Itoa(f.next)
}

func (f *fakeDestination) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.calls = append(f.calls, "guild:"+guildID)

	if f.guildErr != nil {
		return nil, f.guildErr
	}

	return f.guild, nil
}

func (f *fakeDestination) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.calls = append(f.calls, "member:"+userID)

	if f.memberErr != nil {
		return nil, f.memberErr
	}

	return f.member, nil
}

func (f *fakeDestination) GuildRoleCreate(
	guildID string,
	data *discordgo.RoleParams,
	_ ...discordgo.RequestOption,
) (*discordgo.Role, error) {
	f.calls = append(f.calls, "role:"+data.Name)

	if err := f.roleErrs[data.Name]; err != nil {
		return nil, err
	}

	f.roles = append(f.roles, data)

	return &discordgo.Role{
		ID:   f.id(),
		Name: data.Name,
	}, nil
}

func (f *fakeDestination) GuildChannelCreateComplex(
	guildID string,
	data discordgo.GuildChannelCreateData,
	_ ...discordgo.RequestOption,
) (*discordgo.Channel, error) {
	prefix := "channel:"
	if data.Type == discordgo.ChannelTypeGuildCategory {
		prefix = "category:"
	}

	f.calls = append(f.calls, prefix+data.Name)

	if err := f.channelErrs[data.Name]; err != nil {
		return nil, err
	}

	f.channels = append(f.channels, data)

	ch := &discordgo.Channel{
		ID:       f.id(),
		Name:     data.Name,
		Type:     data.Type,
		ParentID: data.ParentID,
	}

	f.created[data.Name] = ch

	return ch, nil
}

func (f *fakeDestination) writes() []string {
	var res []string

	for _, c := range f.calls {
		if strings.HasPrefix(c, "role:") || strings.HasPrefix(c, "channel:") || strings.HasPrefix(c, "category:") {
			res = append(res, c)
		}
	}

	return res
}

type fakeSource struct {
	roles       []RoleRecord
	channels    []ChannelRecord
	rolesErr    error
	channelsErr error
	calls       []string
}

func (f *fakeSource) FetchRoles(_ context.Context, serverID string) ([]RoleRecord, error) {
	f.calls = append(f.calls, "roles:"+serverID)

	return f.roles, f.rolesErr
}

func (f *fakeSource) FetchChannels(_ context.Context, serverID string) ([]ChannelRecord, error) {
	f.calls = append(f.calls, "channels:"+serverID)

	return f.channels, f.channelsErr
}

type sleepCounter struct {
	count int
}

func (s *sleepCounter) sleep(_ context.Context, _ time.Duration) error {
	s.count++

	return nil
}

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{
			StatusCode: status,
			Status:     strconv.Itoa(status),
		},
		Message: &discordgo.APIErrorMessage{
			Code:    code,
			Message: "error",
		},
	}
}

func newTestWriter(dst Destination, sleeper *sleepCounter) Writer {
	return Writer{
		API:   dst,
		Delay: time.Second,
		Sleep: sleeper.sleep,
	}
}
