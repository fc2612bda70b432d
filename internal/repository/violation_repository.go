package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-online/internal/model"
)

const defaultViolationLimit = 100

// ViolationRepository stores the violation log.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// CopyViolations writes a batch with the COPY protocol.
func (r *ViolationRepository) CopyViolations(ctx context.Context, batch []*model.Violation) (int64, error) {
	rows := make([][]interface{}, 0, len(batch))
	for _, v := range batch {
		rows = append(rows, []interface{}{v.StudentID, v.SubjectID, v.Count, v.Warning, v.OccurredAt})
	}

	return r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"exam_violations"},
		[]string{"student_id", "subject_id", "violation_count", "warning", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
}

// InsertViolation writes a single event.
func (r *ViolationRepository) InsertViolation(ctx context.Context, v *model.Violation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_violations (student_id, subject_id, violation_count, warning, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		v.StudentID, v.SubjectID, v.Count, v.Warning, v.OccurredAt,
	)
	return err
}

// List returns the most recent events matching filter, newest first.
func (r *ViolationRepository) List(ctx context.Context, filter model.ViolationFilter) ([]*model.Violation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultViolationLimit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT student_id, subject_id, violation_count, warning, occurred_at
		 FROM exam_violations
		 WHERE ($1 = '' OR student_id = $1)
		   AND ($2 = '' OR subject_id = $2)
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $3`,
		filter.StudentID, filter.SubjectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	violations := make([]*model.Violation, 0)
	for rows.Next() {
		v := &model.Violation{}
		if err := rows.Scan(&v.StudentID, &v.SubjectID, &v.Count, &v.Warning, &v.OccurredAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// CountsBySubject returns the number of logged events per student for a subject.
func (r *ViolationRepository) CountsBySubject(ctx context.Context, subjectID string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, COUNT(*)
		 FROM exam_violations
		 WHERE subject_id = $1
		 GROUP BY student_id`,
		subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var sid string
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		counts[sid] = count
	}
	return counts, rows.Err()
}
