package help

import (
	"context"
	"strings"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
)

const CommandName = "help"

type Command struct {
	*base.Command
	registry *commands.Registry
}

func New(di *di.Container) *Command {
	cmd := &Command{
		registry: di.Commands,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"start", "menu"}
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	_, err := c.Reply(ctx, req.Event, c.Text())
	return err
}

// Text lists every registered command in name order. Commands without a
// summary are left out.
func (c *Command) Text() string {
	bot := c.Cfg.Bot()
	lines := []string{c.L("help.header", nil)}

	for _, cmd := range c.registry.All() {
		id := "help.summary." + cmd.Name()
		summary, ok := c.Localizer.Lookup(id, nil)
		if !ok {
			continue
		}
		lines = append(lines, c.L("help.item", map[string]any{
			"Prefix":  bot.CommandPrefix,
			"Command": cmd.Name(),
			"Summary": summary,
		}))
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			lines = append(lines, c.L("help.aliases", map[string]any{
				"Aliases": strings.Join(aliases, ", "),
			}))
		}
	}

	lines = append(lines, "", c.L("help.wake", map[string]any{
		"Wake": strings.Join(bot.WakeWords, "/"),
	}))
	return strings.Join(lines, "\n")
}
