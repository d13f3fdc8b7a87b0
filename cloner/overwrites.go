package cloner

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

// MapOverwrites translates role overwrites of a source channel to created roles.
// Member overwrites and overwrites of roles absent from mapping are dropped.
// Subject IDs that are not snowflakes are dropped and returned as invalid.
func MapOverwrites(entries []OverwriteEntry, roles RoleMapping) (overwrites []*discordgo.PermissionOverwrite, invalid []string) {
	byRole := make(map[string]*discordgo.PermissionOverwrite)

	for _, e := range entries {
		if e.SubjectType != SubjectRole {
			continue
		}

		if !validID(e.SubjectID) {
			invalid = append(invalid, e.SubjectID)
			continue
		}

		role, ok := roles[e.SubjectID]
		if !ok || role == nil {
			continue
		}

		byRole[role.ID] = &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: e.Allow,
			Deny:  e.Deny,
		}
	}

	overwrites = make([]*discordgo.PermissionOverwrite, 0, len(byRole))

	for _, o := range byRole {
		overwrites = append(overwrites, o)
	}

	sort.Slice(overwrites, func(i, j int) bool {
		return overwrites[i].ID < overwrites[j].ID
	})

	return overwrites, invalid
}
