package cloner

import (
	"github.com/bwmarrin/discordgo"
)

// PermissionAll is granted to guild owner
const PermissionAll int64 = -1

// GuildPermissions returns guild level permissions of member: @everyone role combined with member roles
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}

	if member.User != nil && guild.OwnerID == member.User.ID {
		return PermissionAll
	}

	roles := make(map[string]struct{}, len(member.Roles)+1)
	roles[guild.ID] = struct{}{}

	for _, r := range member.Roles {
		roles[r] = struct{}{}
	}

	var perms int64

	for _, r := range guild.Roles {
		if _, ok := roles[r.ID]; ok {
			perms |= r.Permissions
		}
	}

	return perms
}

// IsAdministrator returns true if permissions include administrator flag
func IsAdministrator(perms int64) bool {
	return perms&discordgo.PermissionAdministrator != 0
}

// HighestRole returns member role with the highest position, nil if member has none
func HighestRole(guild *discordgo.Guild, member *discordgo.Member) *discordgo.Role {
	if guild == nil || member == nil {
		return nil
	}

	owned := make(map[string]struct{}, len(member.Roles))
	for _, r := range member.Roles {
		owned[r] = struct{}{}
	}

	var top *discordgo.Role

	for _, r := range guild.Roles {
		if _, ok := owned[r.ID]; !ok {
			continue
		}

		if top == nil || r.Position > top.Position || (r.Position == top.Position && r.ID < top.ID) {
			top = r
		}
	}

	return top
}
