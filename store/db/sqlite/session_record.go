package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/planwise/planwise/store"
)

func (d *DB) UpsertSessionRecord(ctx context.Context, upsert *store.SessionRecord) (*store.SessionRecord, error) {
	stmt := `
		INSERT INTO planning_session (id, state, context, media_plan, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			state = excluded.state,
			context = excluded.context,
			media_plan = excluded.media_plan,
			updated_ts = excluded.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.ID, upsert.State, upsert.Context, upsert.MediaPlan, upsert.CreatedTs, upsert.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert planning_session: %w", err)
	}
	return upsert, nil
}

func (d *DB) ListSessionRecords(ctx context.Context, find *store.FindSessionRecord) ([]*store.SessionRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.State != nil {
		where, args = append(where, "state = ?"), append(args, *find.State)
	}
	if find.UpdatedAfter != nil {
		where, args = append(where, "updated_ts >= ?"), append(args, *find.UpdatedAfter)
	}

	query := `
		SELECT id, state, context, media_plan, created_ts, updated_ts
		FROM planning_session
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list planning_sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.SessionRecord, 0)
	for rows.Next() {
		r := &store.SessionRecord{}
		if err := rows.Scan(&r.ID, &r.State, &r.Context, &r.MediaPlan, &r.CreatedTs, &r.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan planning_session: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate planning_sessions: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteSessionRecord(ctx context.Context, delete *store.DeleteSessionRecord) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM planning_session WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete planning_session: %w", err)
	}
	return nil
}
