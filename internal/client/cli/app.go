package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/eduterm/internal/client/api"
	"github.com/dmitrijs2005/eduterm/internal/client/chat"
	"github.com/dmitrijs2005/eduterm/internal/client/config"
	"github.com/dmitrijs2005/eduterm/internal/client/session"
	"github.com/dmitrijs2005/eduterm/internal/client/storage"
	"github.com/dmitrijs2005/eduterm/internal/cryptox"
	"github.com/dmitrijs2005/eduterm/internal/filex"
	"github.com/dmitrijs2005/eduterm/internal/logging"
)

const (
	appDirName    = ".eduterm"
	dbFileName    = "client.db"
	secretName    = "secret"
	markerName    = "eduterm-session"
	loginPrompt   = "Enter email"
	namePrompt    = "Enter display name"
	defaultPrompt = "edu"
)

type App struct {
	config    *config.Config
	apiClient api.Client
	session   *session.Store
	chat      *chat.Store
	repos     *storage.Repositories

	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// NewApp wires the full client: data directory, install secret, local DB,
// HTTP client, session store and chat store. The App itself acts as the
// session's Navigator: a forced logout drops the REPL back to the
// anonymous prompt.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	dir, err := filex.EnsureAppDir(appDirName)
	if err != nil {
		return nil, err
	}

	secret, err := cryptox.LoadOrCreateSecret(filepath.Join(dir, secretName))
	if err != nil {
		return nil, err
	}

	repos, err := storage.InitDatabase(ctx, filepath.Join(dir, dbFileName), secret)
	if err != nil {
		return nil, err
	}

	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)
	apiClient := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)

	a := &App{
		config:    c,
		apiClient: apiClient,
		repos:     repos,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		log:       log,
	}
	a.session = session.NewStore(repos.Credentials, session.NewFileMarker(markerName), a, log)
	a.chat = chat.NewStore(apiClient, a.session, repos.Transcripts, log)

	return a, nil
}

// NavigateToLogin implements session.Navigator.
func (a *App) NavigateToLogin() {
	fmt.Fprintln(a.out, "Session expired, please log in again.")
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	if a.isLoggedIn() {
		return "(logged in)"
	}
	return ""
}

// Run restores the persisted session and hands control to the REPL.
func (a *App) Run(ctx context.Context) error {
	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.Name)
		a.warmUp(ctx)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner, a.out)

	return a.Close()
}

func (a *App) Close() error {
	return a.repos.DB.Close()
}
