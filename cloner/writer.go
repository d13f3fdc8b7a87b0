package cloner

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// DefaultDelay is the pause after every successful destination write
const DefaultDelay = time.Second

// Destination is the subset of discordgo session used to inspect and mutate destination server.
// *discordgo.Session satisfies it.
type Destination interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoleCreate(
		guildID string,
		data *discordgo.RoleParams,
		options ...discordgo.RequestOption,
	) (*discordgo.Role, error)
	GuildChannelCreateComplex(
		guildID string,
		data discordgo.GuildChannelCreateData,
		options ...discordgo.RequestOption,
	) (*discordgo.Channel, error)
}

// ObserverFunc is notified about every attempted destination write
type ObserverFunc func(phase Phase, err error)

// Writer creates cloned structure on destination server
type Writer struct {
	API      Destination
	Log      logrus.FieldLogger
	Observer ObserverFunc
	Sleep    func(ctx context.Context, d time.Duration) error
	Reason   string
	Delay    time.Duration
}

func (w *Writer) log() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}

	return w.Log
}

func (w *Writer) observe(phase Phase, err error) {
	if w.Observer != nil {
		w.Observer(phase, err)
	}
}

func (w *Writer) options(ctx context.Context) []discordgo.RequestOption {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}

	if w.Reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(w.Reason))
	}

	return opts
}

func (w *Writer) pause(ctx context.Context) error {
	if w.Delay <= 0 {
		return ctx.Err()
	}

	if w.Sleep != nil {
		return w.Sleep(ctx, w.Delay)
	}

	return sleep(ctx, w.Delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
