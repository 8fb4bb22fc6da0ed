package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Getter is the lookup surface LoadPublic reads from. *ConfigManager
// implements it.
type Getter interface {
	GetWithDefault(key, defaultValue string) string
}

// Branding holds the asset paths shown by the console
type Branding struct {
	ServiceName   string `validate:"required"`
	BgCentered    string
	LogoMain      string
	LogoHome      string
	AvatarDefault string
}

// Links holds external pages. Empty links are hidden.
type Links struct {
	EULA          string `validate:"omitempty,url"`
	Documentation string `validate:"omitempty,url"`
	Support       string `validate:"omitempty,url"`
	APIDoc        string `validate:"omitempty,url"`
}

// Registration controls the invite code field of the sign-up form
type Registration struct {
	ForceInviteCode   string
	DisableInviteCode bool
}

// Appearance controls color scheme and light/dark mode. A forced value wins
// over the default and locks the user choice.
type Appearance struct {
	ForceColorScheme      string
	DefaultColorScheme    string
	ForceAppearanceMode   string `validate:"omitempty,oneof=light dark system"`
	DefaultAppearanceMode string `validate:"omitempty,oneof=light dark system"`
}

// TwoFA lists the enabled second factor methods
type TwoFA struct {
	Enabled       bool
	Authenticator bool
	Email         bool
	SMS           bool
}

// Modules toggles optional console sections
type Modules struct {
	Billing             bool
	Ticketing           bool
	Danger              bool
	DangerDeleteAccount bool
}

// Public is the read-only runtime configuration of the console, loaded once
// at startup.
type Public struct {
	Env                string        `validate:"oneof=local dev prod"`
	BackendAPIBase     string        `validate:"required,url"`
	BackendTimeout     time.Duration `validate:"gt=0"`
	DefaultLocale      string        `validate:"oneof=en fr"`
	SessionDatabaseURL string

	Branding     Branding
	Links        Links
	Registration Registration
	Appearance   Appearance
	TwoFA        TwoFA
	Modules      Modules
}

// LoadPublic reads the runtime configuration from g, applies defaults and
// validates the result.
func LoadPublic(g Getter) (*Public, error) {
	r := reader{g: g}

	cfg := &Public{
		Env:                r.str("APP_ENV", "local"),
		BackendAPIBase:     strings.TrimRight(r.str("BACKEND_API_BASE", "http://localhost:8091"), "/"),
		BackendTimeout:     r.duration("BACKEND_TIMEOUT", 5*time.Second),
		DefaultLocale:      r.str("DEFAULT_LOCALE", "en"),
		SessionDatabaseURL: r.str("SESSION_DATABASE_URL", ""),
		Branding: Branding{
			ServiceName:   r.str("SERVICE_NAME", "IoT Tower Control"),
			BgCentered:    r.str("BG_CENTERED", "/front/bg-centered-2.svg"),
			LogoMain:      r.str("LOGO_MAIN", "/front/logo.png"),
			LogoHome:      r.str("LOGO_HOME", "/front/logo.png"),
			AvatarDefault: r.str("AVATAR_DEFAULT", "/front/avatar.png"),
		},
		Links: Links{
			EULA:          r.str("EULA_LINK", "https://foo.bar/eula"),
			Documentation: r.str("DOCUMENTATION_LINK", "https://github.com/disk91/IoTowerControl-community/wiki"),
			Support:       r.str("SUPPORT_LINK", ""),
			APIDoc:        r.str("APIDOC_LINK", ""),
		},
		Registration: Registration{
			ForceInviteCode:   r.str("FORCE_INVITE_CODE", ""),
			DisableInviteCode: r.boolean("DISABLE_INVITE_CODE", false),
		},
		Appearance: Appearance{
			ForceColorScheme:      r.str("FORCE_COLOR_SCHEME", ""),
			DefaultColorScheme:    r.str("DEFAULT_COLOR_SCHEME", ""),
			ForceAppearanceMode:   r.str("FORCE_APPEARANCE_MODE", ""),
			DefaultAppearanceMode: r.str("DEFAULT_APPEARANCE_MODE", ""),
		},
		TwoFA: TwoFA{
			Enabled:       r.boolean("ENABLE_2FA", true),
			Authenticator: r.boolean("ENABLE_2FA_AUTHENTICATOR", true),
			Email:         r.boolean("ENABLE_2FA_EMAIL", false),
			SMS:           r.boolean("ENABLE_2FA_SMS", false),
		},
		Modules: Modules{
			Billing:             r.boolean("ENABLE_BILLING_FEATURES", false),
			Ticketing:           r.boolean("ENABLE_TICKETING_FEATURES", false),
			Danger:              r.boolean("ENABLE_DANGER_FEATURES", true),
			DangerDeleteAccount: r.boolean("ENABLE_DANGER_DELETE_ACCOUNT", true),
		},
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(r.errs, "; "))
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TwoFAMethods returns the second factor types a user may select, none when
// 2FA is disabled.
func (p *Public) TwoFAMethods() []string {
	if !p.TwoFA.Enabled {
		return nil
	}
	var methods []string
	if p.TwoFA.Authenticator {
		methods = append(methods, "AUTHENTICATOR")
	}
	if p.TwoFA.Email {
		methods = append(methods, "EMAIL")
	}
	if p.TwoFA.SMS {
		methods = append(methods, "SMS")
	}
	return methods
}

// InviteCodeFieldVisible reports whether the sign-up form asks for an invite
// code, given whether the backend requires one.
func (p *Public) InviteCodeFieldVisible(backendRequires bool) bool {
	return backendRequires && !p.Registration.DisableInviteCode && p.Registration.ForceInviteCode == ""
}

// InviteCode returns the code to send at registration. A forced code
// replaces whatever the user typed.
func (p *Public) InviteCode(entered string) string {
	if p.Registration.ForceInviteCode != "" {
		return p.Registration.ForceInviteCode
	}
	return entered
}

// ColorScheme returns the primary and neutral colors to apply and whether the
// user is allowed to change them. Schemes are written "primary,neutral".
func (p *Public) ColorScheme() (primary, neutral string, locked bool) {
	scheme := p.Appearance.DefaultColorScheme
	if p.Appearance.ForceColorScheme != "" {
		scheme, locked = p.Appearance.ForceColorScheme, true
	}
	primary, neutral, _ = strings.Cut(scheme, ",")
	return strings.TrimSpace(primary), strings.TrimSpace(neutral), locked
}

// AppearanceMode returns light, dark or system and whether it is locked
func (p *Public) AppearanceMode() (string, bool) {
	if p.Appearance.ForceAppearanceMode != "" {
		return p.Appearance.ForceAppearanceMode, true
	}
	if p.Appearance.DefaultAppearanceMode != "" {
		return p.Appearance.DefaultAppearanceMode, false
	}
	return "system", false
}

var i18nFiles = []string{
	"common",  // shared by all pages
	"capture", // capture endpoints and protocols
	"tickets", // ticketing system
}

// Locales returns the console locales, default first
func Locales() []string {
	return []string{"en", "fr"}
}

// I18nFiles lists the message files of locale
func I18nFiles(locale string) []string {
	files := make([]string, 0, len(i18nFiles))
	for _, name := range i18nFiles {
		files = append(files, locale+"/"+name+".json")
	}
	return files
}

type reader struct {
	g    Getter
	errs []string
}

func (r *reader) str(key, def string) string {
	return strings.TrimSpace(r.g.GetWithDefault(key, def))
}

func (r *reader) boolean(key string, def bool) bool {
	raw := r.str(key, strconv.FormatBool(def))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a boolean", key, raw))
		return def
	}
	return v
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, def.String())
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a duration", key, raw))
		return def
	}
	return v
}
