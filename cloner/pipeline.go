package cloner

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Source reads structure of the server being cloned
type Source interface {
	FetchRoles(ctx context.Context, serverID string) ([]RoleRecord, error)
	FetchChannels(ctx context.Context, serverID string) ([]ChannelRecord, error)
}

// Stage is reported to NotifyFunc between pipeline phases
type Stage int

// Pipeline stages
const (
	StageStarted Stage = iota
	StageRolesFetched
	StageRolesCreated
	StageChannelsFetched
	StageCategoriesCreated
	StageChannelsCreated
)

// NotifyFunc receives progress of running pipeline
type NotifyFunc func(stage Stage, report *Report)

// Pipeline copies roles, categories and channels from source to destination server
type Pipeline struct {
	Writer
	Source  Source
	Notify  NotifyFunc
	ActorID string
}

func (p *Pipeline) notify(stage Stage, report *Report) {
	if p.Notify != nil {
		p.Notify(stage, report)
	}
}

// CheckDestination verifies destination guild is visible and actor is its administrator
func CheckDestination(ctx context.Context, api Destination, guildID, actorID string) (*discordgo.Guild, error) {
	if !validID(guildID) {
		return nil, fmt.Errorf("%w: server %q", ErrInvalidIdentifier, guildID)
	}

	guild, err := api.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, destinationError(err)
	}

	if guild.OwnerID == actorID {
		return guild, nil
	}

	member, err := api.GuildMember(guildID, actorID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, destinationError(err)
	}

	if !IsAdministrator(GuildPermissions(guild, member)) {
		return nil, ErrNotAdministrator
	}

	return guild, nil
}

func destinationError(err error) error {
	status, _ := restStatus(err)
	if status == http.StatusNotFound || status == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrDestinationNotFound, err)
	}

	return fmt.Errorf("checking destination: %w", err)
}

// Run performs the clone. Errors of precondition check and source reads abort the run,
// write failures are accumulated in returned report.
func (p *Pipeline) Run(ctx context.Context, sourceID, destinationID string) (*Report, error) {
	report := newReport(sourceID, destinationID)

	guild, err := CheckDestination(ctx, p.API, destinationID, p.ActorID)
	if err != nil {
		return report, err
	}

	report.DestinationName = guild.Name

	log := p.log().WithFields(logrus.Fields{
		"source":      sourceID,
		"destination": destinationID,
	})

	p.notify(StageStarted, report)

	roles, err := p.Source.FetchRoles(ctx, sourceID)
	if err != nil {
		return report, err
	}

	for _, r := range roles {
		if r.Cloneable() {
			report.RolesFetched++
		}
	}

	p.notify(StageRolesFetched, report)

	report.RoleMapping, report.Roles = p.CloneRoles(ctx, destinationID, roles)

	log.WithField("created", report.Roles.Created).Info("Roles cloned")
	p.notify(StageRolesCreated, report)

	channels, err := p.Source.FetchChannels(ctx, sourceID)
	if err != nil {
		return report, err
	}

	report.ChannelsFetched = len(channels)

	p.notify(StageChannelsFetched, report)

	report.CategoryMapping, report.Categories, report.Channels = p.cloneStructure(
		ctx, destinationID, channels, report.RoleMapping, func(categories PhaseReport) {
			report.Categories = categories
			p.notify(StageCategoriesCreated, report)
		},
	)

	log.WithField("created", report.Categories.Created+report.Channels.Created).Info("Channels cloned")
	p.notify(StageChannelsCreated, report)

	return report, nil
}
