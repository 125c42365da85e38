// Package http exposes the analysis service over HTTP: a multipart upload
// endpoint that runs the full analysis and returns a JSON report, plus
// health and metrics endpoints.
package http
