package config

import "os"

// SiteConfig holds per-site settings for a single host.
// This allows authenticated scans to be configured once in the config
// file instead of repeated on the command line.
type SiteConfig struct {
	// LoginURL is the page carrying the site's login form.
	LoginURL string `yaml:"loginUrl,omitempty"`

	// Username is the account name typed into the login form.
	Username string `yaml:"username,omitempty"`

	// PasswordEnv names an environment variable holding the password.
	// The password itself never lives in the config file.
	PasswordEnv string `yaml:"passwordEnv,omitempty"`

	// UsernameSelector locates the username input on the login page.
	UsernameSelector string `yaml:"usernameSelector,omitempty"`

	// PasswordSelector locates the password input on the login page.
	PasswordSelector string `yaml:"passwordSelector,omitempty"`

	// SubmitSelector locates the login form's submit control.
	SubmitSelector string `yaml:"submitSelector,omitempty"`

	// Ruleset overrides the global ruleset for this site.
	Ruleset string `yaml:"ruleset,omitempty"`

	// Level overrides the global conformance level for this site.
	Level string `yaml:"level,omitempty"`

	// Tags are extra rule engine tags appended for this site.
	Tags []string `yaml:"tags,omitempty"`
}

// File represents the structure of the .a11yscan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames (e.g. "app.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to all sites unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a hostname, merging the
// site-specific entries over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if site, ok := cf.Sites[host]; ok {
		if site.LoginURL != "" {
			result.LoginURL = site.LoginURL
		}
		if site.Username != "" {
			result.Username = site.Username
		}
		if site.PasswordEnv != "" {
			result.PasswordEnv = site.PasswordEnv
		}
		if site.UsernameSelector != "" {
			result.UsernameSelector = site.UsernameSelector
		}
		if site.PasswordSelector != "" {
			result.PasswordSelector = site.PasswordSelector
		}
		if site.SubmitSelector != "" {
			result.SubmitSelector = site.SubmitSelector
		}
		if site.Ruleset != "" {
			result.Ruleset = site.Ruleset
		}
		if site.Level != "" {
			result.Level = site.Level
		}
		if len(site.Tags) > 0 {
			result.Tags = site.Tags
		}
	}

	return result
}

// LoginConfig converts the site settings into a LoginConfig, resolving
// the password from the configured environment variable. Returns an
// inactive LoginConfig when the site has no login URL.
func (sc SiteConfig) LoginConfig() LoginConfig {
	if sc.LoginURL == "" {
		return LoginConfig{}
	}

	var password string
	if sc.PasswordEnv != "" {
		password = os.Getenv(sc.PasswordEnv)
	}

	return LoginConfig{
		LoginURL:         sc.LoginURL,
		Username:         sc.Username,
		Password:         password,
		UsernameSelector: sc.UsernameSelector,
		PasswordSelector: sc.PasswordSelector,
		SubmitSelector:   sc.SubmitSelector,
	}
}
