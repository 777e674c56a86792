// Package browser manages headless browser processes and page lifetimes
// for accessibility scans. It exposes the browser as a small capability
// interface (navigate, set content, type, click, wait, inject, evaluate)
// with scoped acquisition: WithSession and WithPage guarantee release of
// the underlying Chrome process and tab on every exit path, including
// errors and timeouts inside the scoped work.
//
// The implementation drives Chrome over the DevTools protocol via
// chromedp. Scan strategies depend only on the Launcher, Session, and
// Page interfaces, which keeps them testable without a browser.
package browser
