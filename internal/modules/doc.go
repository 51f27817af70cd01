// Package modules provides the built-in module types that can be declared
// in a groups file.
//
// Types:
//   - static: fixed HTML
//   - fragment: an html/template rendered with the entry's args
//   - remote: HTML fetched over HTTP, optionally narrowed by a CSS selector
//     or an XPath expression
//   - script: HTML returned by a JavaScript render(args) function
//
// Every type reads the same common args: position (required), priority,
// cache (a cache key), cache_ttl (seconds or "forever") and permission.
//
// Remote modules share one Client: resty on top of a retryablehttp
// transport, a token bucket rate limiter and a circuit breaker per host.
// Fetched bodies must sniff as text and are decoded to UTF-8.
package modules
