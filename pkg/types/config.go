package types

import "errors"

// Config holds backend selection and the site settings a Comment needs to
// build URLs and default its author.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// GuestUserID is the author id given to new comments and the fallback
	// for comments whose created_users_id is zero.
	GuestUserID int `json:"guest_user_id" yaml:"guest_user_id"`

	// RootURL and HTTPRoot prefix comment URLs when no page is bound.
	RootURL  string `json:"root_url" yaml:"root_url"`
	HTTPRoot string `json:"http_root" yaml:"http_root"`

	// HTTPS selects the scheme of gravatar URLs.
	HTTPS bool `json:"https" yaml:"https"`

	// UserCacheSize bounds the backend's user lookup cache. Zero selects
	// the default.
	UserCacheSize int `json:"user_cache_size" yaml:"user_cache_size"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by DefaultConfig.
const (
	DefaultGuestUserID   = 40
	DefaultRootURL       = "/"
	DefaultUserCacheSize = 256
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// DefaultConfig returns a Config for the SQLite backend with site defaults.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendSQLite,
		GuestUserID:   DefaultGuestUserID,
		RootURL:       DefaultRootURL,
		HTTPRoot:      "http://localhost" + DefaultRootURL,
		UserCacheSize: DefaultUserCacheSize,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package, joined when more than one check fails.
func (c Config) Validate() error {
	var errs []error
	if c.Backend == "" {
		errs = append(errs, ErrBackendEmpty)
	} else if !knownBackends[c.Backend] {
		errs = append(errs, ErrBackendUnknown)
	}
	if c.GuestUserID < 0 {
		errs = append(errs, ErrGuestUserInvalid)
	}
	if c.UserCacheSize < 0 {
		errs = append(errs, ErrCacheSizeInvalid)
	}
	return errors.Join(errs...)
}
