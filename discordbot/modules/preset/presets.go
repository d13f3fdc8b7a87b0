package preset

import (
	"fmt"
	"strings"

	"github.com/eientei/jaroid-cloner/cloner"
	"github.com/eientei/jaroid-cloner/discordbot/model"
	"github.com/eientei/jaroid-cloner/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

const listSample = 3

func (mod *module) commandPresetList(ctx *router.Context) error {
	presets, err := mod.config.Presets.Load()
	if err != nil {
		return err
	}

	if len(presets) == 0 {
		return ctx.Reply("❌ No role presets found.")
	}

	buf := &strings.Builder{}

	_, _ = buf.WriteString("✨ **Available role presets:**\n")

	for _, name := range presets.Names() {
		roles := presets[name]

		names := make([]string, 0, listSample)

		for i := 0; i < len(roles) && i < listSample; i++ {
			names = append(names, roles[i].Name)
		}

		_, _ = fmt.Fprintf(buf, "**- %s** (%d roles)\n", model.DisplayName(name), len(roles))
		_, _ = fmt.Fprintf(buf, "  *Example: %s...*\n", strings.Join(names, ", "))
	}

	return ctx.Reply(buf.String())
}

func (mod *module) commandPresetSave(ctx *router.Context) error {
	name := model.PresetName(ctx.Options.String("name"))
	if name == "" {
		return ErrEmptyName
	}

	names := model.ParseRoleNames(ctx.Options.String("roles"))
	if len(names) == 0 {
		return ErrNoRoles
	}

	roles := make([]model.PresetRole, 0, len(names))
	for _, n := range names {
		roles = append(roles, model.PresetRole{
			Name:        n,
			Permissions: 0,
			Color:       model.DefaultPresetColor,
		})
	}

	err := mod.config.Presets.Put(name, roles)
	if err != nil {
		return err
	}

	mod.config.Log.WithField("preset", name).WithField("roles", len(roles)).Info("Preset saved")

	return ctx.Reply(fmt.Sprintf(
		"✅ Preset **%s** saved with %d roles (default permissions). Edit `%s` to set permissions and colors.",
		model.DisplayName(name), len(roles), mod.config.Presets.Path,
	))
}

// botPermissions returns guild-wide permissions of the bot member
func (mod *module) botPermissions(ctx *router.Context) (int64, error) {
	roles, err := mod.api.GuildRoles(ctx.GuildID(), discordgo.WithContext(ctx.Context))
	if err != nil {
		return 0, err
	}

	member, err := mod.api.GuildMember(ctx.GuildID(), mod.self(), discordgo.WithContext(ctx.Context))
	if err != nil {
		return 0, err
	}

	return cloner.GuildPermissions(&discordgo.Guild{ID: ctx.GuildID(), Roles: roles}, member), nil
}

func (mod *module) commandPresetUse(ctx *router.Context) error {
	name := model.PresetName(ctx.Options.String("name"))

	roles, err := mod.config.Presets.Get(name)
	if err != nil {
		return fmt.Errorf("%w, use `/preset list` to see available ones", err)
	}

	err = ctx.Defer()
	if err != nil {
		return err
	}

	perms, err := mod.botPermissions(ctx)
	if err != nil {
		return err
	}

	plans, failures := presetPlans(roles, cloner.IsAdministrator(perms))

	return mod.apply(ctx, plans, failures, "Preset "+model.DisplayName(name)+" applied")
}

// presetPlans converts preset roles to creation parameters, roles that can not be created are reported
func presetPlans(roles []model.PresetRole, admin bool) (plans []rolePlan, failures []string) {
	for i := range roles {
		role := &roles[i]

		name := strings.TrimSpace(role.Name)
		if name == "" {
			continue
		}

		if role.Permissions&discordgo.PermissionAdministrator != 0 && !admin {
			failures = append(failures, fmt.Sprintf("❌ %s (bot lacks Administrator to grant it)", name))

			continue
		}

		color, err := role.ColorValue()
		if err != nil {
			failures = append(failures, fmt.Sprintf("❌ %s (%v)", name, err))

			continue
		}

		permissions := role.Permissions

		plans = append(plans, rolePlan{
			name:        name,
			permissions: &permissions,
			color:       &color,
		})
	}

	return plans, failures
}
