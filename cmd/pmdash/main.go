// Command pmdash is a terminal dashboard for projects, tasks and
// notifications served by the project management backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/app"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/coordinator"
	"github.com/nhle/project-dashboard/internal/credential"
	"github.com/nhle/project-dashboard/internal/live"
	"github.com/nhle/project-dashboard/internal/logging"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
	appsync "github.com/nhle/project-dashboard/internal/sync"
)

type options struct {
	configPath string
	baseURL    string
	logLevel   string
	noCache    bool
	login      string
	logout     bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("pmdash", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", model.DefaultConfigPath(), "path to the config file")
	fs.StringVar(&o.baseURL, "base-url", "", "backend base URL (overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&o.noCache, "no-cache", false, "disable the local snapshot cache")
	fs.StringVar(&o.login, "login", "", "store a session token in the OS keyring and exit")
	fs.BoolVar(&o.logout, "logout", false, "remove the stored session token and cached data, then exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func applyFlags(cfg *model.AppConfig, o options) {
	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.noCache {
		cfg.Cache.Enabled = false
	}
}

func run(args []string) error {
	o, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg, o)

	log, closer, err := logging.New().FromPath(cfg.Log.Path).Level(cfg.Log.Level).Make()
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	creds, err := credential.OpenKeyring()
	if err != nil {
		return fmt.Errorf("opening keyring: %w", err)
	}

	if o.login != "" {
		if err := creds.SetToken(o.login); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		fmt.Println("Session token stored.")
		return nil
	}

	store, err := openCache(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	st := state.New()
	client := api.New(cfg.API.BaseURL, creds,
		api.WithLogger(log),
		api.WithTimeout(cfg.API.Timeout()),
	)
	coord := coordinator.New(coordinator.Deps{API: client, State: st, Cache: store, Logger: log})

	if o.logout {
		coord.Logout(context.Background())
		if err := creds.Clear(); err != nil {
			return fmt.Errorf("clearing token: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	}

	coord.Hydrate(context.Background())

	poller := appsync.New(log, store)
	registerJobs(poller, coord, cfg.Sync)

	m := app.New(app.Deps{
		State:        st,
		Coordinators: coord,
		Poller:       poller,
		Logger:       log,
		Logout:       func(context.Context) error { return creds.Clear() },
		Config:       cfg.API,
		Tokens:       creds,
		SaveConfig: func(c model.APIConfig) error {
			cfg.API = c
			return model.SaveConfig(o.configPath, cfg)
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startFeed(ctx, cfg.API.StreamURL, creds, coord, p, log)

	_, err = p.Run()
	poller.Stop()
	if err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

func openCache(cfg *model.AppConfig, log zerolog.Logger) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, nil
	}
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	log.Debug().Str("path", cfg.Cache.Path).Msg("snapshot cache opened")
	return c, nil
}

func interval(sec int, fallback time.Duration) time.Duration {
	if sec <= 0 {
		return fallback
	}
	return time.Duration(sec) * time.Second
}

// registerJobs wires the background refreshers. Reference data refreshes
// on the task interval; notifications poll on their own, shorter one.
func registerJobs(p *appsync.Poller, c *coordinator.Set, cfg model.SyncConfig) {
	notify := interval(cfg.NotificationIntervalSec, 30*time.Second)
	tasks := interval(cfg.TaskIntervalSec, 2*time.Minute)

	p.Register("notifications", notify, func(ctx context.Context) error {
		_, err := c.Notifications.FetchAll(ctx)
		return err
	})
	p.Register("tasks", tasks, func(ctx context.Context) error {
		_, err := c.Tasks.FetchAll(ctx, api.TaskQuery{})
		return err
	})
	p.Register("projects", tasks, func(ctx context.Context) error {
		_, err := c.Projects.FetchAll(ctx, api.ProjectQuery{})
		return err
	})
	p.Register("users", tasks, func(ctx context.Context) error {
		_, err := c.Users.FetchAll(ctx)
		return err
	})
	p.Register("worklogs", tasks, func(ctx context.Context) error {
		_, err := c.WorkLogs.FetchAll(ctx, api.WorkLogQuery{})
		return err
	})
}

// startFeed runs the live notification stream when a URL is configured.
// Incoming notifications land in the store first, then the UI is told.
func startFeed(ctx context.Context, url string, tokens api.TokenSource, c *coordinator.Set, p *tea.Program, log zerolog.Logger) {
	feed := &live.Feed{
		URL:    url,
		Tokens: tokens,
		Logger: log,
		Handler: func(ctx context.Context, n model.Notification) {
			c.Notifications.Receive(ctx, n)
			p.Send(app.NotificationMsg{Notification: n})
		},
	}
	done, err := feed.Start(ctx)
	if errors.Is(err, live.ErrNoURL) {
		log.Info().Msg("live feed disabled")
		return
	}
	go func() {
		p.Send(app.FeedStoppedMsg{Err: <-done})
	}()
}
