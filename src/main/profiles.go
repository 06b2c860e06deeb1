package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"game-translator/src/config"
	"game-translator/src/pipeline"
	"game-translator/src/profile"
	"game-translator/src/region"
	"game-translator/src/runtimeinit"
	"game-translator/src/screenshot"
)

type profileStore interface {
	List() ([]profile.Profile, error)
	Get(title string) (*profile.Profile, error)
	SaveRegions(title string, regions []region.Region) error
}

type configSetter interface {
	SetConfig(ctx context.Context, cfg pipeline.Config) error
}

// profiles tracks which stored profile the resident runs. Tray callbacks,
// controller observers and pre-flight retargeting reach it from different
// goroutines.
type profiles struct {
	store   profileStore
	resolve func(app string) (screenshot.Target, error)
	ctrl    configSetter

	mu     sync.Mutex
	active profile.Profile
}

func (p *profiles) current() profile.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *profiles) setActive(prof profile.Profile) {
	p.mu.Lock()
	p.active = prof
	p.mu.Unlock()
}

func (p *profiles) titles() ([]string, error) {
	list, err := p.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, prof := range list {
		out = append(out, prof.Title)
	}
	return out, nil
}

// switchTo loads title into the session. The controller refuses unless it
// is stopped, in which case the active profile is left alone.
func (p *profiles) switchTo(ctx context.Context, title string) error {
	prof, err := p.store.Get(title)
	if err != nil {
		return fmt.Errorf("profile %q: %w", title, err)
	}
	target, err := p.resolve(prof.App)
	if err != nil {
		return fmt.Errorf("profile %q: %w", title, err)
	}
	cfg, err := runtimeinit.SessionConfig(prof, target)
	if err != nil {
		return err
	}
	if err := p.ctrl.SetConfig(ctx, cfg); err != nil {
		return err
	}
	p.setActive(*prof)
	log.Printf("game-translator: switched to profile %q on %s", prof.Title, target)
	return nil
}

// retarget resolves the active profile's app again.
func (p *profiles) retarget(ctx context.Context, _ pipeline.Config) (screenshot.Target, error) {
	return p.resolve(p.current().App)
}

// saveRegions writes edited regions back to the active profile.
func (p *profiles) saveRegions(regions []region.Region) {
	p.mu.Lock()
	p.active.Regions = region.Clone(regions)
	title := p.active.Title
	p.mu.Unlock()
	if err := p.store.SaveRegions(title, regions); err != nil {
		log.Printf("game-translator: saving regions of %q: %v", title, err)
	}
}

func newProfilesCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List or delete stored profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(st *profile.Store) error {
				return listProfiles(st, cmd.OutOrStdout())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a stored profile and its regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(st *profile.Store) error {
				if err := st.Delete(args[0]); err != nil {
					return fmt.Errorf("delete %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func withStore(opts *mainOptions, fn func(*profile.Store) error) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFile: opts.envFile})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.ProfileDB), 0o755); err != nil {
		return err
	}
	st, err := profile.NewSQLite(cfg.ProfileDB)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func listProfiles(st interface {
	List() ([]profile.Profile, error)
}, out io.Writer) error {
	list, err := st.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "no profiles")
		return nil
	}
	for _, p := range list {
		app := p.App
		if app == "" {
			app = "(display)"
		}
		mode := fmt.Sprintf("%d regions", len(p.Regions))
		if p.UseFullFrame {
			mode = "full frame"
		}
		fmt.Fprintf(out, "%s\t%s\t%s -> %s\t%s\t%s\n", p.Title, app, p.OCRLanguage, p.TranslationLanguage, p.Provider, mode)
	}
	return nil
}
