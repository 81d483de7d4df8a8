package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/studypulse/internal/domain"
)

// EmotionLogRepo implements domain.EmotionLogRepository backed by PostgreSQL.
type EmotionLogRepo struct {
	pool *pgxpool.Pool
}

// NewEmotionLogRepo creates an EmotionLogRepo from the shared connection pool.
func NewEmotionLogRepo(pool *pgxpool.Pool) *EmotionLogRepo {
	return &EmotionLogRepo{pool: pool}
}

func (r *EmotionLogRepo) Insert(ctx context.Context, log *domain.EmotionLog) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO emotion_logs (
			user_id, session_id, emotion, confidence, source,
			facial_emotion, facial_confidence, voice_emotion, voice_confidence, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		log.UserID, log.SessionID, log.Emotion, log.Confidence, log.Source,
		log.FacialEmotion, log.FacialConfidence, log.VoiceEmotion, log.VoiceConfidence,
		log.Timestamp,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to insert emotion log: %w", err)
	}
	return nil
}

func (r *EmotionLogRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.EmotionLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, session_id, emotion, confidence, source,
		       facial_emotion, facial_confidence, voice_emotion, voice_confidence, timestamp
		FROM emotion_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotion logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.EmotionLog
	for rows.Next() {
		var log domain.EmotionLog
		err := rows.Scan(
			&log.ID, &log.UserID, &log.SessionID, &log.Emotion, &log.Confidence, &log.Source,
			&log.FacialEmotion, &log.FacialConfidence, &log.VoiceEmotion, &log.VoiceConfidence,
			&log.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emotion log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emotion logs: %w", err)
	}
	return logs, nil
}
