package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-online/internal/model"
)

// AttemptRepository archives submitted attempts in PostgreSQL.
// Inserts are idempotent on (student_id, subject_id).
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// BulkInsert archives a batch in one statement using UNNEST.
func (r *AttemptRepository) BulkInsert(ctx context.Context, batch []*model.Attempt) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]string, n)
	students := make([]string, n)
	subjects := make([]string, n)
	answers := make([]string, n)
	scores := make([]int32, n)
	totals := make([]int32, n)
	attemptedAts := make([]time.Time, n)
	timeSpents := make([]int32, n)
	tabSwitches := make([]int32, n)
	reasons := make([]string, n)

	for i, a := range batch {
		raw, err := json.Marshal(a.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers of %s: %w", a.ID, err)
		}
		ids[i] = a.ID
		students[i] = a.StudentID
		subjects[i] = a.SubjectID
		answers[i] = string(raw)
		scores[i] = int32(a.Score)
		totals[i] = int32(a.TotalMarks)
		attemptedAts[i] = a.AttemptedAt
		timeSpents[i] = int32(a.TimeSpent)
		tabSwitches[i] = int32(a.TabSwitches)
		reasons[i] = string(a.Reason)
	}

	query := `
		INSERT INTO exam_attempts
			(id, student_id, subject_id, answers, score, total_marks, attempted_at, time_spent, tab_switches, reason)
		SELECT
			u.id::uuid, u.student_id, u.subject_id, u.answers::jsonb, u.score,
			u.total_marks, u.attempted_at, u.time_spent, u.tab_switches, u.reason
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::int[],
			$6::int[],
			$7::timestamptz[],
			$8::int[],
			$9::int[],
			$10::text[]
		) AS u (id, student_id, subject_id, answers, score, total_marks, attempted_at, time_spent, tab_switches, reason)
		ON CONFLICT (student_id, subject_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, students, subjects, answers, scores, totals, attemptedAts, timeSpents, tabSwitches, reasons,
	)
	return err
}

// Insert archives a single attempt.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.Attempt) error {
	raw, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers of %s: %w", a.ID, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_attempts
			(id, student_id, subject_id, answers, score, total_marks, attempted_at, time_spent, tab_switches, reason)
		 VALUES ($1::uuid, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (student_id, subject_id) DO NOTHING`,
		a.ID, a.StudentID, a.SubjectID, string(raw), a.Score, a.TotalMarks,
		a.AttemptedAt, a.TimeSpent, a.TabSwitches, string(a.Reason),
	)
	return err
}
