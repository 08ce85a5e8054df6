// Package server provides the short-lived HTTP server used by the OAuth authorization code flow.
//
// # Router Infrastructure
//
// [BasicRouter] registers handlers on an [http.ServeMux] with method patterns and wraps them in [Middleware].
// The first middleware passed to [NewBasicRouter] or [BasicRouter.Use] runs outermost.
// [Logging] and [Recover] log through charmbracelet/log.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the path of the configured redirect URI. It checks the state parameter, exchanges
// the authorization code for tokens, and sends the result through [OAuthHandler.Result].
// Only the first callback is processed.
//
// # Usage
//
// `plsplit spotify auth` starts the server on the configured host and port, opens the browser, waits for
// one result and shuts the server down.
package server
