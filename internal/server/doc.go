// Package server implements the HTTP surface using Echo.
//
// Routes: merchant API under /api (session-token authenticated), the video
// platform webhook under /webhooks/mux (signature verified), and
// observability endpoints. Handlers split by domain: handlers_streams.go,
// handlers_products.go, handlers_clips.go, handlers_webhook.go.
package server
