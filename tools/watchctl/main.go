// watchctl is a command-line consumer of the reelist client library. It runs
// against the local guest store until you log in, after which every command
// goes through the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v3"

	"reelist/client"
	"reelist/models"
)

type cliConfig struct {
	Server  string `default:"http://localhost:8080"`
	DataDir string `split_words:"true"`
}

type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// Runner wires the client library behind the CLI commands. The backend is
// decided once per invocation: remote when a saved session cookie exists,
// local otherwise.
type Runner struct {
	cfg     cliConfig
	session *client.Session
	sync    *client.Synchronizer
	remote  bool
}

func main() {
	var cfg cliConfig
	if err := envconfig.Process("watchctl", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "watchctl: %v\n", err)
		os.Exit(1)
	}
	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		cfg.DataDir = filepath.Join(base, "watchctl")
	}

	runner, err := NewRunner(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "watchctl: %v\n", err)
		os.Exit(1)
	}

	app := &cli.Command{
		Name:     "watchctl",
		Usage:    "Manage reelist watchlists from the terminal",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "watchctl: %v\n", err)
		os.Exit(1)
	}
}

func NewRunner(cfg cliConfig) (*Runner, error) {
	session, err := client.NewSession(cfg.Server)
	if err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, session: session}

	if cookie := r.loadCookie(); cookie != nil {
		session.Client().SetCookie(cookie)
		r.remote = true
		r.sync = client.NewSynchronizer(client.NewRemoteStore(session.Client()))
	} else {
		r.sync = client.NewSynchronizer(client.NewLocalStore(cfg.DataDir))
	}

	session.OnUnauthorized = func() {
		fmt.Fprintln(os.Stderr, "session expired, run `watchctl login` again")
	}

	return r, nil
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "login",
			Usage:     "Log in and switch to server-backed watchlists",
			ArgsUsage: "EMAIL PASSWORD",
			Action:    r.Login,
		},
		{
			Name:      "signup",
			Usage:     "Create an account and log in",
			ArgsUsage: "EMAIL PASSWORD [FIRST] [LAST]",
			Action:    r.Signup,
		},
		{
			Name:   "logout",
			Usage:  "End the session and return to guest mode",
			Action: r.Logout,
		},
		{
			Name:   "whoami",
			Usage:  "Show the logged-in account, if any",
			Action: r.Whoami,
		},
		{
			Name:   "lists",
			Usage:  "Print all watchlists with their items",
			Action: r.Lists,
		},
		{
			Name:      "create",
			Usage:     "Create a watchlist",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "default", Usage: "make this the default list"},
			},
			Action: r.Create,
		},
		{
			Name:      "rename",
			Usage:     "Rename a watchlist",
			ArgsUsage: "LIST_ID NAME",
			Action:    r.Rename,
		},
		{
			Name:      "set-default",
			Usage:     "Make a watchlist the default",
			ArgsUsage: "LIST_ID",
			Action:    r.SetDefault,
		},
		{
			Name:      "rm",
			Usage:     "Delete a watchlist",
			ArgsUsage: "LIST_ID",
			Action:    r.Remove,
		},
		{
			Name:      "add",
			Usage:     "Add a title to a watchlist",
			ArgsUsage: "LIST_ID TITLE_ID TITLE",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "year", Usage: "release year"},
				&cli.StringFlag{Name: "poster", Usage: "poster image URL"},
			},
			Action: r.Add,
		},
		{
			Name:      "watched",
			Usage:     "Set an item's watched flag",
			ArgsUsage: "LIST_ID ITEM_ID true|false",
			Action:    r.Watched,
		},
		{
			Name:      "rm-item",
			Usage:     "Remove an item from a watchlist",
			ArgsUsage: "LIST_ID ITEM_ID",
			Action:    r.RemoveItem,
		},
		{
			Name:      "search",
			Usage:     "Search movies and TV (requires login)",
			ArgsUsage: "QUERY",
			Action:    r.Search,
		},
	}
}

func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	email, pw := cmd.Args().Get(0), cmd.Args().Get(1)
	if email == "" || pw == "" {
		return errors.New("usage: watchctl login EMAIL PASSWORD")
	}

	user, err := r.session.Login(ctx, email, pw)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := r.saveCookie(); err != nil {
		return err
	}

	// The local guest data is discarded on login; the server is now the
	// backend of record.
	_ = client.NewLocalStore(r.cfg.DataDir).Clear()
	r.sync.Reset(client.NewRemoteStore(r.session.Client()))

	fmt.Printf("✅ Logged in as %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	return nil
}

func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	email, pw := cmd.Args().Get(0), cmd.Args().Get(1)
	if email == "" || pw == "" {
		return errors.New("usage: watchctl signup EMAIL PASSWORD [FIRST] [LAST]")
	}

	user, err := r.session.Signup(ctx, models.SignupInput{
		Email:     email,
		Password:  pw,
		FirstName: cmd.Args().Get(2),
		LastName:  cmd.Args().Get(3),
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	if err := r.saveCookie(); err != nil {
		return err
	}

	_ = client.NewLocalStore(r.cfg.DataDir).Clear()
	r.sync.Reset(client.NewRemoteStore(r.session.Client()))

	fmt.Printf("✅ Account created: %s\n", user.Email)
	return nil
}

func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if r.remote {
		if err := r.session.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server logout failed: %v\n", err)
		}
	}
	if err := os.Remove(r.cookiePath()); err != nil && !os.IsNotExist(err) {
		return err
	}

	r.sync.Reset(client.NewLocalStore(r.cfg.DataDir))
	fmt.Println("👋 Logged out, back to guest mode")
	return nil
}

func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	if !r.remote {
		fmt.Println("guest (local watchlists)")
		return nil
	}
	user, err := r.session.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("guest (no active session)")
		return nil
	}
	fmt.Printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	return nil
}

func (r *Runner) Lists(ctx context.Context, cmd *cli.Command) error {
	if err := r.load(ctx); err != nil {
		return err
	}

	lists := r.sync.Snapshot()
	if len(lists) == 0 {
		fmt.Println("no watchlists yet, `watchctl create NAME` to start one")
		return nil
	}

	for _, list := range lists {
		marker := " "
		if list.IsDefault {
			marker = "★"
		}
		fmt.Printf("%s %s  %s (%d items)\n", marker, list.ID, list.Name, len(list.Items))
		for _, item := range list.Items {
			check := " "
			if item.Watched {
				check = "✓"
			}
			year := ""
			if item.ReleaseYear > 0 {
				year = fmt.Sprintf(" (%d)", item.ReleaseYear)
			}
			fmt.Printf("    [%s] %s  %s%s\n", check, item.ID, item.Title, year)
		}
	}
	return nil
}

func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	if err := r.load(ctx); err != nil {
		return err
	}

	created := r.sync.CreateWatchlist(ctx, cmd.Args().First(), cmd.Bool("default"))
	if created == nil {
		return errors.New("could not create watchlist")
	}
	fmt.Printf("📋 Created %q (%s)\n", created.Name, created.ID)
	return nil
}

func (r *Runner) Rename(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return errors.New("usage: watchctl rename LIST_ID NAME")
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	updated := r.sync.RenameWatchlist(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if updated == nil {
		return errors.New("could not rename watchlist")
	}
	fmt.Printf("📋 Renamed to %q\n", updated.Name)
	return nil
}

func (r *Runner) SetDefault(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().First() == "" {
		return errors.New("usage: watchctl set-default LIST_ID")
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	updated := r.sync.SetDefaultWatchlist(ctx, cmd.Args().First())
	if updated == nil {
		return errors.New("could not set default watchlist")
	}
	fmt.Printf("★ %q is now the default\n", updated.Name)
	return nil
}

func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().First() == "" {
		return errors.New("usage: watchctl rm LIST_ID")
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	if !r.sync.DeleteWatchlist(ctx, cmd.Args().First()) {
		return errors.New("could not delete watchlist (is it the default?)")
	}
	fmt.Println("🗑 Watchlist deleted")
	return nil
}

func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 3 {
		return errors.New("usage: watchctl add LIST_ID TITLE_ID TITLE")
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	item := r.sync.AddItem(ctx, cmd.Args().Get(0), models.ItemInput{
		ID:          cmd.Args().Get(1),
		Title:       cmd.Args().Get(2),
		ReleaseYear: int(cmd.Int("year")),
		PosterURL:   cmd.String("poster"),
	})
	if item == nil {
		return errors.New("could not add item")
	}
	fmt.Printf("➕ Added %q\n", item.Title)
	return nil
}

func (r *Runner) Watched(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 3 {
		return errors.New("usage: watchctl watched LIST_ID ITEM_ID true|false")
	}
	watched, err := strconv.ParseBool(cmd.Args().Get(2))
	if err != nil {
		return fmt.Errorf("bad watched value %q: %w", cmd.Args().Get(2), err)
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	item := r.sync.SetItemWatched(ctx, cmd.Args().Get(0), cmd.Args().Get(1), watched)
	if item == nil {
		return errors.New("could not update item")
	}
	if item.Watched {
		fmt.Printf("✓ %q marked watched\n", item.Title)
	} else {
		fmt.Printf("◻ %q marked unwatched\n", item.Title)
	}
	return nil
}

func (r *Runner) RemoveItem(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return errors.New("usage: watchctl rm-item LIST_ID ITEM_ID")
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	if !r.sync.DeleteItem(ctx, cmd.Args().Get(0), cmd.Args().Get(1)) {
		return errors.New("could not remove item")
	}
	fmt.Println("🗑 Item removed")
	return nil
}

func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return errors.New("usage: watchctl search QUERY")
	}
	if !r.remote {
		return errors.New("search requires login")
	}

	resp, err := r.session.Client().R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("/search")
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("search returned %d", resp.StatusCode())
	}

	var results []models.SearchResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return fmt.Errorf("parse search results: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, res := range results {
		year := ""
		if res.ReleaseYear > 0 {
			year = fmt.Sprintf(" (%d)", res.ReleaseYear)
		}
		fmt.Printf("%s  %-5s %s%s\n", res.ID, res.MediaType, res.Title, year)
	}
	return nil
}

// load runs the synchronizer's initial fetch, once per invocation.
func (r *Runner) load(ctx context.Context) error {
	r.sync.Initialize(ctx)
	if r.sync.LoadState() != client.LoadSucceeded {
		return errors.New("could not load watchlists")
	}
	return nil
}

func (r *Runner) cookiePath() string {
	return filepath.Join(r.cfg.DataDir, "session.json")
}

// loadCookie restores a previously saved session cookie, dropping it when
// expired.
func (r *Runner) loadCookie() *http.Cookie {
	data, err := os.ReadFile(r.cookiePath())
	if err != nil {
		return nil
	}
	var saved savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil
	}
	if !saved.Expires.IsZero() && saved.Expires.Before(time.Now()) {
		_ = os.Remove(r.cookiePath())
		return nil
	}
	return &http.Cookie{Name: saved.Name, Value: saved.Value, Expires: saved.Expires}
}

// saveCookie persists the session cookie the server just set, so later
// invocations stay logged in.
func (r *Runner) saveCookie() error {
	base, err := url.Parse(r.cfg.Server)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}

	for _, cookie := range r.session.Client().GetClient().Jar.Cookies(base) {
		saved := savedCookie{Name: cookie.Name, Value: cookie.Value, Expires: cookie.Expires}
		data, err := json.MarshalIndent(&saved, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(r.cookiePath(), data, 0o600)
	}
	return errors.New("server did not set a session cookie")
}
