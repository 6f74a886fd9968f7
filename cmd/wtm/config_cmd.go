package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/ui/static"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage wtm configuration.

Global config: ~/.config/wtm/config.toml (override with WTM_CONFIG)
Local config:  .wtm.toml in the main checkout`,
		Example: `  wtm config init          # Create default global config
  wtm config init --local  # Create local repo config
  wtm config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config.
With --local, creates .wtm.toml in the main checkout of the current repo.`,
		Example: `  wtm config init           # Create global config
  wtm config init --local   # Create local repo config
  wtm config init -f        # Overwrite existing config
  wtm config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			if stdout {
				if local {
					out.Print(config.DefaultLocalConfig())
				} else {
					out.Print(config.DefaultConfig())
				}
				return nil
			}

			var (
				path string
				err  error
			)
			if local {
				ws, werr := openWorkspace(ctx, workDir)
				if werr != nil {
					return werr
				}
				defer ws.Close()
				mainRepo, ok := ws.reg.MainRepositoryPath(ctx)
				if !ok {
					return fmt.Errorf("%s: %w", workDir, git.ErrNotRepository)
				}
				path, err = config.InitLocal(mainRepo, force)
			} else {
				path, err = config.Init(force)
			}
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			l.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-repo .wtm.toml instead of global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show effective configuration.

Inside a repo the global config merged with its .wtm.toml is shown,
otherwise the global config alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if jsonOutput {
				return out.Encode(output.FormatJSON, configView(ws.cfg))
			}

			if err := toml.NewEncoder(out.Writer()).Encode(ws.cfg); err != nil {
				return err
			}
			if len(ws.cfg.Hooks.Hooks) == 0 {
				return nil
			}
			out.Println()
			out.Print(static.RenderTable([]string{"HOOK", "ON", "COMMAND"}, hookRows(ws.cfg.Hooks)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// configView is the structured form of a Config, including hooks.
func configView(c *config.Config) map[string]any {
	return map[string]any{
		"worktree_dir":    c.WorktreeDir,
		"git_path":        c.GitPath,
		"command_timeout": c.CommandTimeout.String(),
		"cache_ttl":       c.CacheTTL.String(),
		"enrich":          c.Enrich,
		"state_dir":       c.StateDir,
		"hooks":           c.Hooks.Hooks,
	}
}

func hookRows(hc config.HooksConfig) [][]string {
	names := make([]string, 0, len(hc.Hooks))
	for name := range hc.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		h := hc.Hooks[name]
		if !h.IsEnabled() {
			continue
		}
		on := strings.Join(h.On, ",")
		if on == "" {
			on = "--hook"
		}
		rows = append(rows, []string{name, on, h.Command})
	}
	return rows
}
