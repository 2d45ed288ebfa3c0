package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartpaddy/advisor/internal/config"
	"github.com/smartpaddy/advisor/internal/guard"
	"github.com/smartpaddy/advisor/internal/logging"
	"github.com/smartpaddy/advisor/internal/session"
	"github.com/smartpaddy/advisor/internal/tui"
	"github.com/smartpaddy/advisor/pkg/client"
	"github.com/smartpaddy/advisor/pkg/domain"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run `paddy login`")
	errNotAdmin       = errors.New("not logged in as an admin, run `paddy login`")
	errSessionExpired = errors.New("session expired, run `paddy login`")
)

// App holds what every command shares: resolved config, logger, session
// store and API client. setupCommand fills it in before any command runs.
type App struct {
	version string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	v          *viper.Viper
	configFile string

	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	store     *session.Store
	api       *client.Client

	// runProgram runs the interactive client. Tests replace it.
	runProgram func(tea.Model) error
}

// NewApp returns an App on the process's standard streams.
func NewApp(version string) *App {
	return &App{
		version:    version,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		logger:     zerolog.Nop(),
		runProgram: runAltScreen,
	}
}

func runAltScreen(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// Execute runs the command line with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	a.v = config.NewViper()

	root := &cobra.Command{
		Use:     "paddy",
		Short:   "Smart Paddy Advisor client",
		Version: a.version,
		Long: `paddy talks to the Smart Paddy advisory service.

Run it without a command for the interactive client: log in, submit field
measurements and read the stage-by-stage cultivation plan. The commands
below do the same things one at a time for scripts.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE:              a.runInteractive,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is <data-dir>/config.yaml)")
	flags.String("api-url", "", "advisory service URL (default "+client.DefaultBaseURL+")")
	flags.String("data-dir", "", "where the session and log file live (default ~/.paddy)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")

	for key, name := range map[string]string{
		config.KeyAPIURL:   "api-url",
		config.KeyDataDir:  "data-dir",
		config.KeyLogLevel: "log-level",
	} {
		// Only fails for a nil flag.
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.SetVersionTemplate("paddy {{.Version}}\n")

	root.AddCommand(
		a.newLoginCommand(),
		a.newRegisterCommand(),
		a.newLogoutCommand(),
		a.newWhoamiCommand(),
		a.newPredictCommand(),
		a.newHistoryCommand(),
		a.newUsersCommand(),
		a.newVersionCommand(),
	)
	return root
}

// setupCommand resolves configuration, then builds the logger, session store
// and client for the command about to run.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, a.logCloser = logging.New(a.loggingConfig(cmd))

	a.store = session.NewStore(session.NewFileBackend(cfg.DataDir), a.logger)
	a.store.Load()

	a.api = client.New(cfg.APIURL, a.store,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithLogger(a.logger),
	)

	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("api_url", cfg.APIURL).
		Str("data_dir", cfg.DataDir).
		Str("config_file", cfg.ConfigFile).
		Msg("configured")
	return nil
}

// loggingConfig sends the interactive client's logs to the log file, since
// it owns the terminal. Other commands log warnings to stderr unless told
// otherwise.
func (a *App) loggingConfig(cmd *cobra.Command) logging.Config {
	lc := logging.DefaultConfig()
	lc.Format = a.cfg.LogFormat
	lc.Level = a.cfg.LogLevel
	lc.Output = a.cfg.LogOutput

	if lc.Output == "" {
		if cmd == cmd.Root() {
			lc.Output = a.cfg.LogFile()
		} else {
			lc.Output = "stderr"
		}
	}
	if cmd != cmd.Root() && !a.logLevelChosen(cmd) {
		lc.Level = "warn"
	}
	return lc
}

func (a *App) logLevelChosen(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("log-level") || a.v.InConfig(config.KeyLogLevel) {
		return true
	}
	_, ok := os.LookupEnv(config.EnvPrefix + "_LOG_LEVEL")
	return ok
}

func (a *App) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// runInteractive verifies any stored token, then starts the interactive
// client on the page the session allows.
func (a *App) runInteractive(cmd *cobra.Command, _ []string) error {
	start := tui.PathLogin

	if s := a.store.Current(); s.Authenticated() {
		user, err := a.api.Me(cmd.Context())
		switch {
		case err == nil:
			if err := a.store.Set(s.Token, *user); err != nil {
				a.logger.Warn().Err(err).Msg("refreshing stored user")
			}
			start = tui.HomeFor(user)
		case client.IsAuthFailure(err):
			// Only force re-login on an actual auth failure.
			a.logger.Info().Msg("stored session rejected")
			a.clearSession()
		default:
			// Network or server trouble: the pages report it themselves.
			a.logger.Warn().Err(err).Msg("could not verify session")
			start = tui.HomeFor(s.User)
		}
	}

	return a.runProgram(tui.NewApp(a.api, a.store, a.logger, start))
}

// requireRole runs the route guard for a command. role == "" admits any
// authenticated session.
func (a *App) requireRole(role domain.Role) (domain.Session, error) {
	d := guard.Check(a.store, role)
	if d.Admitted() {
		return a.store.Current(), nil
	}
	a.logger.Debug().Str("required", string(role)).Str("redirect", d.RedirectTo).Msg("guard denied command")
	if role != "" && a.store.Current().Authenticated() {
		return domain.Session{}, errNotAdmin
	}
	return domain.Session{}, errNotLoggedIn
}

// remoteError turns an API failure into the message users see. An auth
// failure also ends the stored session.
func (a *App) remoteError(err error) error {
	if client.IsAuthFailure(err) {
		a.clearSession()
		return errSessionExpired
	}
	return errors.New(client.AsError(err).Message)
}

func (a *App) clearSession() {
	if err := a.store.Clear(); err != nil {
		a.logger.Warn().Err(err).Msg("clearing session")
	}
}
