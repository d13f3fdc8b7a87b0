package preset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/eientei/jaroid-cloner/cloner"
	"github.com/eientei/jaroid-cloner/discordbot/model"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

type rolePlan struct {
	name        string
	permissions *int64
	color       *int
}

type creation struct {
	created  []*discordgo.Role
	failures []string
	reorder  error
}

func (c *creation) Render(title string) string {
	buf := &strings.Builder{}

	_, _ = buf.WriteString("✅ **" + title + ":**\n")

	for _, r := range c.created {
		_, _ = buf.WriteString("✨ " + r.Name + "\n")
	}

	if len(c.failures) > 0 {
		_, _ = buf.WriteString("\n⚠️ **Warnings/failures:**\n")
		_, _ = buf.WriteString(strings.Join(c.failures, "\n"))
		_, _ = buf.WriteString("\n")
	}

	if c.reorder != nil {
		_, _ = buf.WriteString("\n⚠️ **Attention:** roles were created but could not be reordered, adjust their order manually.\n")
	}

	return buf.String()
}

func (mod *module) options(ctx context.Context, reason string) []discordgo.RequestOption {
	return []discordgo.RequestOption{
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason),
	}
}

// createRoles creates roles in given order, permission denied stops creation
func (mod *module) createRoles(ctx context.Context, guildID string, plans []rolePlan, reason string) *creation {
	c := &creation{}

	for _, plan := range plans {
		role, err := mod.api.GuildRoleCreate(guildID, &discordgo.RoleParams{
			Name:        plan.name,
			Permissions: plan.permissions,
			Color:       plan.color,
		}, mod.options(ctx, reason)...)
		if err == nil && role == nil {
			err = errors.New("empty response")
		}

		mod.config.Metrics.WriteObserved("preset", err)

		if err != nil {
			err = cloner.ClassifyWrite(err)

			mod.config.Log.WithError(err).WithField("guild", guildID).WithField("role", plan.name).Error("Creating role")

			if errors.Is(err, cloner.ErrPermissionDenied) {
				c.failures = append(c.failures, fmt.Sprintf("❌ %s (insufficient permissions)", plan.name))

				break
			}

			c.failures = append(c.failures, fmt.Sprintf("❌ %s (error: %v)", plan.name, err))

			continue
		}

		c.created = append(c.created, role)
	}

	return c
}

// orderBelow computes positions placing created roles, given highest first, right below top role
func orderBelow(roles, created []*discordgo.Role, top *discordgo.Role) ([]*discordgo.Role, error) {
	isCreated := make(map[string]struct{}, len(created))
	for _, r := range created {
		isCreated[r.ID] = struct{}{}
	}

	var ascending []*discordgo.Role

	for _, r := range roles {
		if r == nil {
			continue
		}

		if _, ok := isCreated[r.ID]; !ok {
			ascending = append(ascending, r)
		}
	}

	sort.SliceStable(ascending, func(i, j int) bool {
		a, b := ascending[i], ascending[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}

		if len(a.ID) != len(b.ID) {
			return len(a.ID) < len(b.ID)
		}

		return a.ID < b.ID
	})

	k := -1

	for i, r := range ascending {
		if r.ID == top.ID {
			k = i
		}
	}

	if k < 0 {
		return nil, ErrBotRoleNotFound
	}

	ordered := make([]*discordgo.Role, 0, len(ascending)+len(created))
	ordered = append(ordered, ascending[:k]...)

	for i := len(created) - 1; i >= 0; i-- {
		ordered = append(ordered, created[i])
	}

	ordered = append(ordered, ascending[k:]...)

	positions := make([]*discordgo.Role, len(ordered))
	for i, r := range ordered {
		positions[i] = &discordgo.Role{
			ID:       r.ID,
			Position: i,
		}
	}

	return positions, nil
}

func (mod *module) reorder(ctx context.Context, guildID string, created []*discordgo.Role, reason string) error {
	roles, err := mod.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	member, err := mod.api.GuildMember(guildID, mod.self(), discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	top := cloner.HighestRole(&discordgo.Guild{ID: guildID, Roles: roles}, member)
	if top == nil {
		return ErrBotRoleNotFound
	}

	positions, err := orderBelow(roles, created, top)
	if err != nil {
		return err
	}

	_, err = mod.api.GuildRoleReorder(guildID, positions, mod.options(ctx, reason)...)

	return err
}

// apply creates roles and orders them, failures collected before creation are reported along
func (mod *module) apply(ctx *router.Context, plans []rolePlan, failures []string, title string) error {
	guildID := ctx.GuildID()
	reason := fmt.Sprintf("/%s by %s", ctx.Route.Name, ctx.UserID())

	c := mod.createRoles(ctx.Context, guildID, plans, reason)
	c.failures = append(failures, c.failures...)

	if len(c.created) == 0 {
		if len(c.failures) == 0 {
			return ErrNoRolesCreated
		}

		return fmt.Errorf("%w:\n%s", ErrNoRolesCreated, strings.Join(c.failures, "\n"))
	}

	c.reorder = mod.reorder(ctx.Context, guildID, c.created, reason)
	if c.reorder != nil {
		mod.config.Log.WithError(c.reorder).WithField("guild", guildID).Error("Reordering roles")
		c.failures = append(c.failures, fmt.Sprintf("❌ reorder (%v)", c.reorder))
	}

	return ctx.Reply(c.Render(title))
}

func (mod *module) commandCreateRoles(ctx *router.Context) error {
	names := model.ParseRoleNames(ctx.Options.String("roles"))
	if len(names) == 0 {
		return ErrNoRoles
	}

	err := ctx.Defer()
	if err != nil {
		return err
	}

	plans := make([]rolePlan, 0, len(names))
	for _, name := range names {
		plans = append(plans, rolePlan{name: name})
	}

	return mod.apply(ctx, plans, nil, "Roles created and ordered")
}
