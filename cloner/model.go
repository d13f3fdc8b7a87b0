// Package cloner copies the role and channel structure of one Discord server onto another
package cloner

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ChannelKind is the subset of channel types the cloner understands
type ChannelKind int

// Channel kinds
const (
	KindOther ChannelKind = iota
	KindCategory
	KindText
	KindVoice
	KindAnnouncement
	KindStage
)

func (kind ChannelKind) String() string {
	switch kind {
	case KindCategory:
		return "category"
	case KindText:
		return "text"
	case KindVoice:
		return "voice"
	case KindAnnouncement:
		return "announcement"
	case KindStage:
		return "stage"
	default:
		return "other"
	}
}

func kindOf(t discordgo.ChannelType) ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildCategory:
		return KindCategory
	case discordgo.ChannelTypeGuildText:
		return KindText
	case discordgo.ChannelTypeGuildVoice:
		return KindVoice
	case discordgo.ChannelTypeGuildNews:
		return KindAnnouncement
	case discordgo.ChannelTypeGuildStageVoice:
		return KindStage
	default:
		return KindOther
	}
}

// SubjectType tells whether permission overwrite applies to a role or to a member
type SubjectType int

// Overwrite subjects
const (
	SubjectRole SubjectType = iota
	SubjectMember
)

// RoleRecord is a role as read from the source server
type RoleRecord struct {
	ID          string
	Name        string
	Permissions int64
	Color       int
	Position    int
	Hoist       bool
	Mentionable bool
	Managed     bool
	Everyone    bool
}

// Cloneable reports whether role participates in cloning
func (role *RoleRecord) Cloneable() bool {
	return !role.Managed && !role.Everyone
}

// OverwriteEntry is a single per-channel permission exception
type OverwriteEntry struct {
	SubjectID   string
	SubjectType SubjectType
	Allow       int64
	Deny        int64
}

// ChannelRecord is a channel or category as read from the source server
type ChannelRecord struct {
	ID         string
	Name       string
	ParentID   string
	Topic      string
	Kind       ChannelKind
	Position   int
	RateLimit  int
	UserLimit  int
	Bitrate    int
	NSFW       bool
	Overwrites []OverwriteEntry
}

// RoleMapping maps source role IDs to roles created on destination
type RoleMapping map[string]*discordgo.Role

// CategoryMapping maps source category IDs to categories created on destination
type CategoryMapping map[string]*discordgo.Channel

func validID(id string) bool {
	if id == "" {
		return false
	}

	_, err := strconv.ParseUint(id, 10, 64)

	return err == nil
}

func roleRecord(guildID string, role *discordgo.Role) RoleRecord {
	return RoleRecord{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: role.Permissions,
		Color:       role.Color,
		Position:    role.Position,
		Hoist:       role.Hoist,
		Mentionable: role.Mentionable,
		Managed:     role.Managed,
		Everyone:    role.ID == guildID || role.Name == "@everyone",
	}
}

func channelRecord(channel *discordgo.Channel) ChannelRecord {
	rec := ChannelRecord{
		ID:        channel.ID,
		Name:      channel.Name,
		ParentID:  channel.ParentID,
		Topic:     channel.Topic,
		Kind:      kindOf(channel.Type),
		Position:  channel.Position,
		RateLimit: channel.RateLimitPerUser,
		UserLimit: channel.UserLimit,
		Bitrate:   channel.Bitrate,
		NSFW:      channel.NSFW,
	}

	for _, o := range channel.PermissionOverwrites {
		if o == nil {
			continue
		}

		subject := SubjectRole
		if o.Type == discordgo.PermissionOverwriteTypeMember {
			subject = SubjectMember
		}

		rec.Overwrites = append(rec.Overwrites, OverwriteEntry{
			SubjectID:   o.ID,
			SubjectType: subject,
			Allow:       o.Allow,
			Deny:        o.Deny,
		})
	}

	return rec
}
