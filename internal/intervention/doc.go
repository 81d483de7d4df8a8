// Package intervention turns detected emotions into rate-limited
// pedagogical responses.
//
// A static catalog maps each emotion to an intervention template (type,
// priority, rotating messages, action tags). The engine enforces a
// per-emotion cooldown, rotates deterministically through the configured
// messages, and keeps a session log for statistics. Producing nothing is a
// frequent, valid outcome; the engine never returns an error.
package intervention
