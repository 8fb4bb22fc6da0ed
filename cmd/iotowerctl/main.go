// Package main is iotowerctl, a command line console for the IoT Tower
// backend. It signs in, keeps the session between runs and calls the users,
// tickets and capture modules.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"iotower.com/console/api"
	"iotower.com/console/capture"
	"iotower.com/console/config"
	"iotower.com/console/duration"
	"iotower.com/console/pg/model"
	"iotower.com/console/pg/repo"
	"iotower.com/console/session"
	"iotower.com/console/tickets"
	"iotower.com/console/users"
)

const usage = `usage: iotowerctl [flags] <command> [args]

commands:
  status                 backend reachability and session state
  config                 public and users module configuration
  login                  sign in with -email and -password
  upgrade                complete a two factor sign-in with -code
  renew                  renew the access token when it is about to expire
  logout                 sign out and forget the saved session
  register               start self registration for -email, with -invite when required
  whoami                 identity held by the session
  profile                profile of the signed-in user
  tickets                list support tickets, closed ones too with -closed
  ticket <id>            show a ticket with its replies
  protocols              list capture protocols
  endpoints              list capture endpoints
  delete-endpoint <id>   delete a capture endpoint

flags:
`

type options struct {
	profile  string
	email    string
	password string
	code     string
	invite   string
	lang     string
	closed   bool
	verbose  bool
}

func main() {
	os.Exit(execute())
}

// execute runs one command and returns the process exit code. Deferred
// cleanup runs before the caller exits.
func execute() int {
	var opts options
	flag.StringVar(&opts.profile, "profile", "default", "Name the session is saved under")
	flag.StringVar(&opts.email, "email", "", "Account email (login)")
	flag.StringVar(&opts.password, "password", "", "Account password (login), defaults to IOTOWER_PASSWORD")
	flag.StringVar(&opts.code, "code", "", "Second factor code (upgrade)")
	flag.StringVar(&opts.invite, "invite", "", "Invitation code (register)")
	flag.StringVar(&opts.lang, "lang", "", "Language for durations, defaults to DEFAULT_LOCALE")
	flag.BoolVar(&opts.closed, "closed", false, "Include closed tickets (tickets)")
	flag.BoolVar(&opts.verbose, "v", false, "Log backend calls")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}
	if opts.password == "" {
		opts.password = os.Getenv("IOTOWER_PASSWORD")
	}

	if err := config.InitGlobalConfig(); err != nil {
		slog.Error("failed to load config source", slog.Any("error", err))
		return 1
	}
	cfg, err := config.LoadPublic(config.GetGlobalConfig())
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 1
	}
	setupLogging(cfg, opts.verbose)
	if opts.lang == "" {
		opts.lang = cfg.DefaultLocale
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newConsole(ctx, cfg, opts)
	if err != nil {
		slog.Error("failed to start console", slog.Any("error", err))
		return 1
	}
	defer c.close()

	out, err := c.run(ctx, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		return reportError(os.Stderr, err, flag.Usage)
	}
	if out != nil {
		printJSON(os.Stdout, out)
	}
	return 0
}

// reportError writes err and returns the exit code: 2 for usage errors,
// 1 otherwise
func reportError(w io.Writer, err error, usage func()) int {
	var usageErr usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(w, usageErr)
		usage()
		return 2
	}
	printJSON(w, api.AsActionResult(err))
	return 1
}

// setupLogging sends logs to stderr so stdout only carries command output
func setupLogging(cfg *config.Public, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Env == "prod" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type usageError string

func (e usageError) Error() string { return string(e) }

// console holds the clients of one run
type console struct {
	cfg     *config.Public
	opts    options
	session *session.Store
	users   *users.Client
	tickets *tickets.Client
	capture *capture.Client
	format  *duration.Formatter

	sessions model.SessionRepository
	closeDB  func()
}

func newConsole(ctx context.Context, cfg *config.Public, opts options) (*console, error) {
	sess := session.New(session.WithLogger(slog.Default()))
	gw, err := api.NewGateway(sess, api.Options{
		BaseURL:   cfg.BackendAPIBase,
		Timeout:   cfg.BackendTimeout,
		Logger:    slog.Default(),
		UserAgent: "iotowerctl",
	})
	if err != nil {
		return nil, err
	}

	c := &console{
		cfg:     cfg,
		opts:    opts,
		session: sess,
		users:   users.New(gw, sess, users.Options{Logger: slog.Default()}),
		tickets: tickets.New(gw),
		capture: capture.New(gw),
		format:  duration.NewFormatter(opts.lang),
		closeDB: func() {},
	}

	if cfg.SessionDatabaseURL == "" {
		return c, nil
	}
	pool, err := repo.Connect(ctx, cfg.SessionDatabaseURL)
	if err != nil {
		return nil, err
	}
	db := repo.NewPostgresDB(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	c.sessions = db
	c.closeDB = pool.Close

	rec, err := db.LoadSession(ctx, opts.profile)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
	case err != nil:
		slog.Warn("saved session unavailable", slog.String("profile", opts.profile), slog.Any("error", err))
	default:
		sess.Restore(rec.Snapshot)
	}
	return c, nil
}

func (c *console) close() {
	c.closeDB()
}

// save persists the session after a command changed it
func (c *console) save(ctx context.Context) {
	if c.sessions == nil {
		return
	}
	rec := &model.SessionRecord{Profile: c.opts.profile, Snapshot: c.session.Snapshot()}
	if err := c.sessions.SaveSession(ctx, rec); err != nil {
		slog.Warn("failed to save session", slog.String("profile", c.opts.profile), slog.Any("error", err))
	}
}

func (c *console) forget(ctx context.Context) {
	if c.sessions == nil {
		return
	}
	err := c.sessions.DeleteSession(ctx, c.opts.profile)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		slog.Warn("failed to delete session", slog.String("profile", c.opts.profile), slog.Any("error", err))
	}
}

func (c *console) run(ctx context.Context, cmd string, args []string) (any, error) {
	switch cmd {
	case "status":
		return c.status(ctx), nil
	case "config":
		return c.config(ctx)
	case "login":
		return c.login(ctx)
	case "upgrade":
		return c.upgrade(ctx)
	case "renew":
		return c.renew(ctx)
	case "logout":
		err := c.users.Logout(ctx)
		c.forget(ctx)
		return nil, err
	case "register":
		return c.users.Register(ctx, users.AccountRegistrationBody{
			Email:            c.opts.email,
			RegistrationCode: c.cfg.InviteCode(c.opts.invite),
		})
	case "whoami":
		return c.whoami(), nil
	case "profile":
		if err := c.requireSession(ctx); err != nil {
			return nil, err
		}
		return c.users.Profile(ctx, true)
	case "tickets":
		if err := c.requireSession(ctx); err != nil {
			return nil, err
		}
		return c.tickets.List(ctx, c.opts.closed)
	case "ticket":
		id, err := ticketID(args)
		if err != nil {
			return nil, err
		}
		if err := c.requireSession(ctx); err != nil {
			return nil, err
		}
		return c.tickets.Get(ctx, id)
	case "protocols":
		return c.protocols(ctx)
	case "endpoints":
		return c.endpoints(ctx)
	case "delete-endpoint":
		if len(args) != 1 {
			return nil, usageError("delete-endpoint takes an endpoint id")
		}
		if err := c.requireSession(ctx); err != nil {
			return nil, err
		}
		return c.capture.DeleteEndpoint(ctx, args[0])
	default:
		return nil, usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func ticketID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError("ticket takes a ticket id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Sprintf("invalid ticket id %q", args[0]))
	}
	return id, nil
}

// requireSession refuses to call the backend with an expired session and
// renews the token when it is about to expire
func (c *console) requireSession(ctx context.Context) error {
	if c.session.IsJWTExpired() {
		return api.NewActionResult(api.StatusForbidden, 0, "sessionExpired")
	}
	renewed, err := c.users.RenewIfNeeded(ctx)
	if err != nil {
		return err
	}
	if renewed {
		c.save(ctx)
	}
	return nil
}

type statusView struct {
	Backend      string `json:"backend"`
	BackendUp    bool   `json:"backend_up"`
	ConfigSource string `json:"config_source"`
	SignedIn     bool   `json:"signed_in"`
	ExpiresIn    string `json:"expires_in,omitempty"`
	RenewSoon    bool   `json:"renew_soon,omitempty"`
}

func (c *console) status(ctx context.Context) statusView {
	// any call refreshes backend reachability
	_, _ = c.users.ModuleConfig(ctx)

	v := statusView{
		Backend:   c.cfg.BackendAPIBase,
		BackendUp: c.session.BackendUp(),
		SignedIn:  !c.session.IsJWTExpired(),
	}
	if cm := config.GetGlobalConfig(); cm != nil {
		v.ConfigSource = cm.GetConfigSource()
	}
	if v.SignedIn {
		v.ExpiresIn = c.format.FormatDuration(c.session.ExpiresIn())
		v.RenewSoon = c.session.IsJWTToBeRenewed()
	}
	return v
}

type configView struct {
	Env          string             `json:"env"`
	Locales      []string           `json:"locales"`
	TwoFAMethods []string           `json:"two_fa_methods"`
	InviteCode   bool               `json:"invite_code_field"`
	Appearance   appearanceView     `json:"appearance"`
	Modules      config.Modules     `json:"modules"`
	Users        users.ModuleConfig `json:"users"`
}

type appearanceView struct {
	PrimaryColor string `json:"primary_color,omitempty"`
	NeutralColor string `json:"neutral_color,omitempty"`
	ColorLocked  bool   `json:"color_locked"`
	Mode         string `json:"mode,omitempty"`
	ModeLocked   bool   `json:"mode_locked"`
}

func (c *console) config(ctx context.Context) (configView, error) {
	mc, err := c.users.ModuleConfig(ctx)
	if err != nil {
		return configView{}, err
	}
	primary, neutral, colorLocked := c.cfg.ColorScheme()
	mode, modeLocked := c.cfg.AppearanceMode()
	return configView{
		Env:          c.cfg.Env,
		Locales:      config.Locales(),
		TwoFAMethods: c.cfg.TwoFAMethods(),
		InviteCode:   c.cfg.InviteCodeFieldVisible(mc.InvitationCodeRequired),
		Appearance: appearanceView{
			PrimaryColor: primary,
			NeutralColor: neutral,
			ColorLocked:  colorLocked,
			Mode:         mode,
			ModeLocked:   modeLocked,
		},
		Modules: c.cfg.Modules,
		Users:   mc,
	}, nil
}

func (c *console) login(ctx context.Context) (users.LoginResponse, error) {
	resp, err := c.users.Login(ctx, users.LoginBody{Email: c.opts.email, Password: c.opts.password})
	if err != nil {
		return users.LoginResponse{}, err
	}
	c.save(ctx)
	return redact(resp), nil
}

func (c *console) upgrade(ctx context.Context) (users.LoginResponse, error) {
	if c.opts.code == "" {
		return users.LoginResponse{}, usageError("upgrade needs -code")
	}
	resp, err := c.users.Upgrade(ctx, c.opts.code)
	if err != nil {
		return users.LoginResponse{}, err
	}
	c.save(ctx)
	return redact(resp), nil
}

func (c *console) renew(ctx context.Context) (map[string]any, error) {
	if c.session.IsJWTExpired() {
		return nil, api.NewActionResult(api.StatusForbidden, 0, "sessionExpired")
	}
	renewed, err := c.users.RenewIfNeeded(ctx)
	if err != nil {
		return nil, err
	}
	if renewed {
		c.save(ctx)
	}
	return map[string]any{
		"renewed":    renewed,
		"expires_in": c.format.FormatDuration(c.session.ExpiresIn()),
	}, nil
}

// redact drops the tokens from command output; they stay in the session
func redact(resp users.LoginResponse) users.LoginResponse {
	resp.JWTToken = ""
	resp.JWTRenewalToken = ""
	return resp
}

type whoamiView struct {
	Email           string `json:"email"`
	Login           string `json:"login"`
	TwoFAType       string `json:"two_fa_type,omitempty"`
	UserAdmin       bool   `json:"user_admin"`
	GroupAdmin      bool   `json:"group_admin"`
	GroupLocalAdmin bool   `json:"group_local_admin"`
	Expired         bool   `json:"expired"`
	ExpiresIn       string `json:"expires_in,omitempty"`
}

func (c *console) whoami() whoamiView {
	v := whoamiView{
		Email:           c.session.UserEmail(),
		Login:           c.session.UserLogin(),
		TwoFAType:       c.session.User2faType(),
		UserAdmin:       c.session.UserAdmin(),
		GroupAdmin:      c.session.GroupAdmin(),
		GroupLocalAdmin: c.session.GroupLocalAdmin(),
		Expired:         c.session.IsJWTExpired(),
	}
	if !v.Expired {
		v.ExpiresIn = c.format.FormatDuration(c.session.ExpiresIn())
	}
	return v
}

type protocolView struct {
	capture.Protocol
	Fields map[string]string `json:"fields"`
}

func (c *console) protocols(ctx context.Context) ([]protocolView, error) {
	if err := c.requireSession(ctx); err != nil {
		return nil, err
	}
	protocols, err := c.capture.Protocols(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocolView, 0, len(protocols))
	for _, p := range protocols {
		fields := make(map[string]string, len(p.MandatoryFields))
		for name, vt := range p.Describe() {
			fields[name] = vt.String()
		}
		out = append(out, protocolView{Protocol: p, Fields: fields})
	}
	return out, nil
}

type endpointView struct {
	capture.Endpoint
	Age string `json:"age"`
}

func (c *console) endpoints(ctx context.Context) ([]endpointView, error) {
	if err := c.requireSession(ctx); err != nil {
		return nil, err
	}
	endpoints, err := c.capture.Endpoints(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]endpointView, 0, len(endpoints))
	for _, e := range endpoints {
		out = append(out, endpointView{Endpoint: e, Age: c.format.FormatDuration(now.Sub(e.Created()))})
	}
	return out, nil
}
