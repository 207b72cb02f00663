// Package browser drives the strip board through Playwright.
//
// A Session owns one browser, one context and one page for the whole run.
// It stubs configured script routes, collects console and page errors
// through a Monitor, captures screenshots into the artifacts directory and
// exposes the small set of UI actions the scenarios need. Locator timeouts
// surface as runner.ErrNotReached and a closed page as runner.ErrAborted.
package browser
