// Package database provides PostgreSQL connectivity and repositories.
//
// Uses pgx for connection pooling and tern for embedded migrations.
// Repositories implement the domain interfaces: UserRepository,
// SessionRepository, EmotionLogRepository, InterventionRepository,
// FeedbackRepository.
package database
