// Package scan orchestrates accessibility scans. It composes the
// browser layer and the rule engine runtime into scan strategies: a
// direct URL scan, a raw-HTML scan, a local-file scan, an authenticated
// scan that performs a scripted login first, and a batch scan over
// several URLs.
//
// Every strategy validates its request before any browser resource is
// acquired, runs the rule engine exactly once per page, and guarantees
// browser teardown on every exit path through the scoped acquisition
// helpers of the browser package.
package scan
