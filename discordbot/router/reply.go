package router

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// MessageLimit is maximum length of a single message
const MessageLimit = 2000

// SplitMessage splits content into parts not longer than limit, preferring line boundaries
func SplitMessage(content string, limit int) []string {
	if limit <= 0 || len(content) <= limit {
		return []string{content}
	}

	var (
		parts []string
		buf   strings.Builder
	)

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, buf.String())
			buf.Reset()
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if buf.Len()+len(line) > limit {
			flush()
		}

		for len(line) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}

			if cut == 0 {
				cut = limit
			}

			parts = append(parts, line[:cut])
			line = line[cut:]
		}

		_, _ = buf.WriteString(line)
	}

	flush()

	return parts
}

type sessionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewResponder provides responder replying through session
func NewResponder(session *discordgo.Session, interaction *discordgo.Interaction) Responder {
	return &sessionResponder{
		session:     session,
		interaction: interaction,
	}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}

	return 0
}

func (r *sessionResponder) Defer(ephemeral bool) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags(ephemeral),
		},
	})
}

func (r *sessionResponder) Followup(content string, ephemeral bool) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   flags(ephemeral),
	})

	return err
}
