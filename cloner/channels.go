package cloner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// CloneChannels creates categories first, then channels nested into created categories.
// Channel kinds other than text, voice, announcement and stage are skipped.
func (w *Writer) CloneChannels(
	ctx context.Context,
	guildID string,
	channels []ChannelRecord,
	roles RoleMapping,
) (categories CategoryMapping, categoriesReport, channelsReport PhaseReport) {
	return w.cloneStructure(ctx, guildID, channels, roles, nil)
}

func (w *Writer) cloneStructure(
	ctx context.Context,
	guildID string,
	channels []ChannelRecord,
	roles RoleMapping,
	between func(categories PhaseReport),
) (CategoryMapping, PhaseReport, PhaseReport) {
	sorted := make([]ChannelRecord, len(channels))
	copy(sorted, channels)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	categories, categoriesReport := w.cloneCategories(ctx, guildID, sorted, roles)

	if between != nil {
		between(categoriesReport)
	}

	channelsReport := w.cloneNested(ctx, guildID, sorted, roles, categories)

	return categories, categoriesReport, channelsReport
}

func (w *Writer) overwrites(log logrus.FieldLogger, rec *ChannelRecord, roles RoleMapping) []*discordgo.PermissionOverwrite {
	overwrites, invalid := MapOverwrites(rec.Overwrites, roles)

	for _, id := range invalid {
		log.WithField("subject", id).Warn("Skipping overwrite with invalid id")
	}

	return overwrites
}

func (w *Writer) cloneCategories(
	ctx context.Context,
	guildID string,
	channels []ChannelRecord,
	roles RoleMapping,
) (CategoryMapping, PhaseReport) {
	mapping := make(CategoryMapping)
	report := PhaseReport{Phase: PhaseCategories}

	for i := range channels {
		rec := &channels[i]
		if rec.Kind != KindCategory {
			continue
		}

		report.Attempted++

		log := w.log().WithFields(logrus.Fields{
			"guild":    guildID,
			"category": rec.Name,
		})

		if !validID(rec.ID) {
			log.WithField("id", rec.ID).Warn("Skipping category with invalid id")
			report.fail(rec.Name, fmt.Errorf("%w: category %q", ErrInvalidIdentifier, rec.ID))

			continue
		}

		created, err := w.createChannel(ctx, guildID, discordgo.GuildChannelCreateData{
			Name:                 rec.Name,
			Type:                 discordgo.ChannelTypeGuildCategory,
			PermissionOverwrites: w.overwrites(log, rec, roles),
		})
		w.observe(PhaseCategories, err)

		if err != nil {
			log.WithError(err).Error("Creating category")
			report.fail(rec.Name, err)

			if errors.Is(err, ErrPermissionDenied) {
				report.Halted = true

				break
			}

			continue
		}

		mapping[rec.ID] = created
		report.Created++

		if err = w.pause(ctx); err != nil {
			report.fail(rec.Name, err)
			report.Halted = true

			break
		}
	}

	return mapping, report
}

func (w *Writer) cloneNested(
	ctx context.Context,
	guildID string,
	channels []ChannelRecord,
	roles RoleMapping,
	categories CategoryMapping,
) PhaseReport {
	report := PhaseReport{Phase: PhaseChannels}

	for i := range channels {
		rec := &channels[i]
		if rec.Kind == KindCategory {
			continue
		}

		log := w.log().WithFields(logrus.Fields{
			"guild":   guildID,
			"channel": rec.Name,
			"kind":    rec.Kind.String(),
		})

		data, ok := channelData(rec)
		if !ok {
			log.Debug("Skipping unsupported channel kind")

			report.Skipped++

			continue
		}

		report.Attempted++

		data.ParentID = w.parent(log, rec, categories)
		data.PermissionOverwrites = w.overwrites(log, rec, roles)

		_, err := w.createChannel(ctx, guildID, data)
		w.observe(PhaseChannels, err)

		if err != nil {
			log.WithError(err).Error("Creating channel")
			report.fail(rec.Name, err)

			if errors.Is(err, ErrPermissionDenied) {
				report.Halted = true

				break
			}

			continue
		}

		report.Created++

		if err = w.pause(ctx); err != nil {
			report.fail(rec.Name, err)
			report.Halted = true

			break
		}
	}

	return report
}

func (w *Writer) parent(log logrus.FieldLogger, rec *ChannelRecord, categories CategoryMapping) string {
	if rec.ParentID == "" {
		return ""
	}

	if !validID(rec.ParentID) {
		log.WithField("parent", rec.ParentID).Warn("Ignoring invalid parent id")

		return ""
	}

	if category, ok := categories[rec.ParentID]; ok && category != nil {
		return category.ID
	}

	return ""
}

// channelData builds kind specific creation request; announcement channels are created as text channels
func channelData(rec *ChannelRecord) (discordgo.GuildChannelCreateData, bool) {
	data := discordgo.GuildChannelCreateData{
		Name: rec.Name,
	}

	switch rec.Kind {
	case KindText, KindAnnouncement:
		data.Type = discordgo.ChannelTypeGuildText
		data.Topic = rec.Topic
		data.RateLimitPerUser = rec.RateLimit
		data.NSFW = rec.NSFW
	case KindVoice:
		data.Type = discordgo.ChannelTypeGuildVoice
		data.UserLimit = rec.UserLimit
		data.Bitrate = rec.Bitrate
	case KindStage:
		data.Type = discordgo.ChannelTypeGuildStageVoice
	default:
		return data, false
	}

	return data, true
}

func (w *Writer) createChannel(
	ctx context.Context,
	guildID string,
	data discordgo.GuildChannelCreateData,
) (*discordgo.Channel, error) {
	created, err := w.API.GuildChannelCreateComplex(guildID, data, w.options(ctx)...)
	if err != nil {
		return nil, ClassifyWrite(err)
	}

	if created == nil {
		return nil, fmt.Errorf("%w: empty channel response", ErrTransientWrite)
	}

	return created, nil
}
