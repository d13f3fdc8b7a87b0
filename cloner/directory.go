package cloner

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Directory reads source server structure with the secondary credential.
// It owns its own REST session and never shares it with the bot session.
type Directory struct {
	session *discordgo.Session
}

// NewDirectory provides directory bound to given credential
func NewDirectory(credential string) (*Directory, error) {
	return NewDirectoryClient(credential, nil)
}

// NewDirectoryClient provides directory bound to given credential using custom http client
func NewDirectoryClient(credential string, client *http.Client) (*Directory, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrAuthenticationRejected
	}

	session, err := discordgo.New(credential)
	if err != nil {
		return nil, fmt.Errorf("creating source session: %w", err)
	}

	if client != nil {
		session.Client = client
	}

	return &Directory{
		session: session,
	}, nil
}

// FetchRoles returns all roles of the source server
func (dir *Directory) FetchRoles(ctx context.Context, serverID string) ([]RoleRecord, error) {
	if !validID(serverID) {
		return nil, fmt.Errorf("%w: server %q", ErrInvalidIdentifier, serverID)
	}

	roles, err := dir.session.GuildRoles(serverID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyRead("roles", err)
	}

	records := make([]RoleRecord, 0, len(roles))

	for _, r := range roles {
		if r == nil {
			return nil, fmt.Errorf("fetching roles: %w: null role", ErrMalformedResponse)
		}

		records = append(records, roleRecord(serverID, r))
	}

	return records, nil
}

// FetchChannels returns all channels and categories of the source server
func (dir *Directory) FetchChannels(ctx context.Context, serverID string) ([]ChannelRecord, error) {
	if !validID(serverID) {
		return nil, fmt.Errorf("%w: server %q", ErrInvalidIdentifier, serverID)
	}

	channels, err := dir.session.GuildChannels(serverID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyRead("channels", err)
	}

	records := make([]ChannelRecord, 0, len(channels))

	for _, c := range channels {
		if c == nil {
			return nil, fmt.Errorf("fetching channels: %w: null channel", ErrMalformedResponse)
		}

		records = append(records, channelRecord(c))
	}

	return records, nil
}
