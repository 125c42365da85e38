// Package app assembles the web server: configuration, logging, router and
// graceful shutdown.
package app
