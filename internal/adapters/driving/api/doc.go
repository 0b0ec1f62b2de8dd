// Package api exposes the research agent as a small JSON HTTP API built on echo.
package api
