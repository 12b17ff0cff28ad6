package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
)

const scheduleColumns = `id, document_id, generated_at, mode, total_duration_days,
		critical_path, inspections, permits, warnings, phase_summary`

const scheduledTaskColumns = `task_id, name, description, phase, trade, quantity,
		duration_days, start_day, end_day, critical_path, slack_days,
		inspection_required, permit_required, classified, dependencies`

// SQLiteScheduleRepo implements ScheduleRepo. A schedule is a header row
// in schedules plus one scheduled_tasks row per task, kept in result order.
type SQLiteScheduleRepo struct {
	db db.DBTX
}

// NewSQLiteScheduleRepo creates a new SQLiteScheduleRepo.
func NewSQLiteScheduleRepo(conn db.DBTX) *SQLiteScheduleRepo {
	return &SQLiteScheduleRepo{db: conn}
}

func (r *SQLiteScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	res := &s.Result
	critical, err := encodeJSON(res.CriticalPath)
	if err != nil {
		return fmt.Errorf("encoding critical_path: %w", err)
	}
	inspections, err := encodeJSON(res.Inspections)
	if err != nil {
		return fmt.Errorf("encoding inspections: %w", err)
	}
	permits, err := encodeJSON(res.Permits)
	if err != nil {
		return fmt.Errorf("encoding permits: %w", err)
	}
	warnings, err := encodeJSON(res.Warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	summary, err := encodeJSON(res.PhaseSummary)
	if err != nil {
		return fmt.Errorf("encoding phase_summary: %w", err)
	}

	query := `INSERT INTO schedules (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.DocumentID,
		formatTime(s.GeneratedAt),
		string(s.Mode),
		res.TotalDurationDays,
		critical,
		inspections,
		permits,
		warnings,
		summary,
	)
	if err != nil {
		return fmt.Errorf("inserting schedule: %w", err)
	}

	taskQuery := `INSERT INTO scheduled_tasks (schedule_id, position, ` + scheduledTaskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, t := range res.Tasks {
		deps, err := encodeJSON(t.Dependencies)
		if err != nil {
			return fmt.Errorf("encoding dependencies of %s: %w", t.ID, err)
		}
		_, err = r.db.ExecContext(ctx, taskQuery,
			s.ID,
			i,
			t.ID,
			t.Name,
			t.Description,
			string(t.Phase),
			t.Trade,
			t.Quantity,
			t.DurationDays,
			t.StartDay,
			t.EndDay,
			boolToInt(t.CriticalPath),
			nullableFloatToValue(t.SlackDays),
			boolToInt(t.InspectionRequired),
			boolToInt(t.PermitRequired),
			boolToInt(t.Classified),
			deps,
		)
		if err != nil {
			return fmt.Errorf("inserting scheduled task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (r *SQLiteScheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	return r.load(ctx, r.db.QueryRowContext(ctx, query, id), id)
}

// GetLatestByDocument returns the most recently generated schedule.
func (r *SQLiteScheduleRepo) GetLatestByDocument(ctx context.Context, documentID string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE document_id = ?
		ORDER BY generated_at DESC, rowid DESC LIMIT 1`
	return r.load(ctx, r.db.QueryRowContext(ctx, query, documentID), "for document "+documentID)
}

func (r *SQLiteScheduleRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules WHERE document_id = ?`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting schedules: %w", err)
	}
	return n, nil
}

func (r *SQLiteScheduleRepo) load(ctx context.Context, row *sql.Row, label string) (*domain.Schedule, error) {
	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", label, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.Result.Tasks, err = r.listTasks(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteScheduleRepo) listTasks(ctx context.Context, scheduleID string) ([]domain.Task, error) {
	query := `SELECT ` + scheduledTaskColumns + ` FROM scheduled_tasks WHERE schedule_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var phase, deps string
		var slack sql.NullFloat64
		var critical, inspection, permit, classified int
		err := rows.Scan(
			&t.ID, &t.Name, &t.Description, &phase, &t.Trade, &t.Quantity,
			&t.DurationDays, &t.StartDay, &t.EndDay, &critical, &slack,
			&inspection, &permit, &classified, &deps,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning scheduled task: %w", err)
		}
		t.Phase = domain.Phase(phase)
		t.CriticalPath = intToBool(critical)
		t.SlackDays = nullableFloat(slack)
		t.InspectionRequired = intToBool(inspection)
		t.PermitRequired = intToBool(permit)
		t.Classified = intToBool(classified)
		if t.Dependencies, err = decodeJSON[string]("dependencies", deps); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

func scanSchedule(row scanner) (*domain.Schedule, error) {
	var s domain.Schedule
	var generatedAt, mode, critical, inspections, permits, warnings, summary string

	err := row.Scan(
		&s.ID, &s.DocumentID, &generatedAt, &mode, &s.Result.TotalDurationDays,
		&critical, &inspections, &permits, &warnings, &summary,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}

	s.Mode = domain.CriticalPathMode(mode)
	if s.GeneratedAt, err = parseTime("generated_at", generatedAt); err != nil {
		return nil, err
	}
	if s.Result.CriticalPath, err = decodeJSON[string]("critical_path", critical); err != nil {
		return nil, err
	}
	if s.Result.Inspections, err = decodeJSON[domain.Inspection]("inspections", inspections); err != nil {
		return nil, err
	}
	if s.Result.Permits, err = decodeJSON[domain.Permit]("permits", permits); err != nil {
		return nil, err
	}
	if s.Result.PhaseSummary, err = decodeJSON[domain.PhaseSummary]("phase_summary", summary); err != nil {
		return nil, err
	}
	ws, err := decodeJSON[string]("warnings", warnings)
	if err != nil {
		return nil, err
	}
	if len(ws) > 0 {
		s.Result.Warnings = ws
	}
	return &s, nil
}
