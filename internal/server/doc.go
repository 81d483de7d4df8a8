// Package server implements the HTTP server using Echo framework.
//
// Routes: user and session management, detection lifecycle, emotion state,
// intervention requests, feedback, history, the emotion WebSocket, and
// observability endpoints. Handlers split by domain: handlers_users.go,
// handlers_sessions.go, handlers_emotion.go, handlers_websocket.go,
// handlers_health.go.
package server
