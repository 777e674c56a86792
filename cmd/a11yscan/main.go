// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan audits web pages for accessibility issues by driving a
// headless Chrome browser and running the axe-core rule engine against
// live URLs, raw HTML, or local files.
//
// Usage:
//
//	a11yscan scan <url>
//	a11yscan scan --file page.html
//	a11yscan serve
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
