package cloner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// CloneRoles creates copies of source roles on destination server, lowest ranked first.
// Created roles keep only insertion order as their hierarchy, no re-ranking is done.
func (w *Writer) CloneRoles(ctx context.Context, guildID string, roles []RoleRecord) (RoleMapping, PhaseReport) {
	mapping := make(RoleMapping)
	report := PhaseReport{Phase: PhaseRoles}

	for _, role := range cloneableRoles(roles) {
		report.Attempted++

		log := w.log().WithFields(logrus.Fields{
			"guild": guildID,
			"role":  role.Name,
		})

		if !validID(role.ID) {
			log.WithField("id", role.ID).Warn("Skipping role with invalid id")
			report.fail(role.Name, fmt.Errorf("%w: role %q", ErrInvalidIdentifier, role.ID))

			continue
		}

		created, err := w.createRole(ctx, guildID, role)
		w.observe(PhaseRoles, err)

		if err != nil {
			log.WithError(err).Error("Creating role")
			report.fail(role.Name, err)

			if errors.Is(err, ErrPermissionDenied) {
				report.Halted = true

				break
			}

			continue
		}

		mapping[role.ID] = created
		report.Created++

		if err = w.pause(ctx); err != nil {
			report.fail(role.Name, err)
			report.Halted = true

			break
		}
	}

	return mapping, report
}

func cloneableRoles(roles []RoleRecord) []RoleRecord {
	res := make([]RoleRecord, 0, len(roles))

	for _, r := range roles {
		if r.Cloneable() {
			res = append(res, r)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Position < res[j].Position
	})

	return res
}

func (w *Writer) createRole(ctx context.Context, guildID string, role RoleRecord) (*discordgo.Role, error) {
	color := role.Color
	hoist := role.Hoist
	permissions := role.Permissions
	mentionable := role.Mentionable

	created, err := w.API.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        role.Name,
		Color:       &color,
		Hoist:       &hoist,
		Permissions: &permissions,
		Mentionable: &mentionable,
	}, w.options(ctx)...)
	if err != nil {
		return nil, ClassifyWrite(err)
	}

	if created == nil {
		return nil, fmt.Errorf("%w: empty role response", ErrTransientWrite)
	}

	return created, nil
}
