// Package config provides configuration structures and utilities for
// a11yscan. It defines scan defaults, conformance settings, per-site
// login configuration loaded from YAML, and XDG directory helpers.
package config
