// Package log provides logging with automatic masking of credentials,
// built on top of the standard slog package.
//
// Authenticated scans carry login credentials through the scanner; the
// MaskingHandler guarantees that password and token values never reach
// log output, even in verbose mode. All other attributes pass through to
// the underlying handler untouched.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("login submitted",
//	    "url", req.LoginURL,
//	    "password", req.Password, // masked
//	)
package log
