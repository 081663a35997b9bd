package repository

import (
	"context"
	"strings"

	"fleetHQ/models"
)

// Find returns missions matching f. Default order is newest first; the
// conflict guard asks for schedule order.
func (r *MissionRepository) Find(ctx context.Context, f MissionFilter) ([]models.Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where := make([]string, 0, 5)
	args := make([]any, 0, 8)
	if f.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *f.OwnerID)
	}
	if f.DroneID != nil {
		where = append(where, "drone_id = ?")
		args = append(args, *f.DroneID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.Before != nil {
		where = append(where, "date_time < ?")
		args = append(args, toMillis(*f.Before))
	}
	if f.ExcludeID != 0 {
		where = append(where, "id <> ?")
		args = append(args, f.ExcludeID)
	}

	query := `SELECT ` + missionColumns + ` FROM missions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.Sort {
	case SortDateTimeAsc:
		query += " ORDER BY date_time ASC, id ASC"
	default:
		query += " ORDER BY created_at DESC, id DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
