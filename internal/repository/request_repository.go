package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kasraf/service-desk/internal/model"
)

// RequestRepo persists service requests and their comments.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

const requestColumns = "id,requester_id,assignee_id,title,description,category,priority,status,created_at,updated_at"

// Create inserts a request in status open and returns its ID.
func (r *RequestRepo) Create(ctx context.Context, sr *model.ServiceRequest) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO service_requests (requester_id, title, description, category, priority, status) VALUES (?,?,?,?,?,?)",
		sr.RequesterID, sr.Title, sr.Description, sr.Category, sr.Priority, model.StatusOpen)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single request.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	var (
		sr       model.ServiceRequest
		assignee sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM service_requests WHERE id=? LIMIT 1", id).Scan(
		&sr.ID, &sr.RequesterID, &assignee, &sr.Title, &sr.Description,
		&sr.Category, &sr.Priority, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ServiceRequest{}, ErrNotFound
	}
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if assignee.Valid {
		v := uint64(assignee.Int64)
		sr.AssigneeID = &v
	}
	return sr, nil
}

// List returns requests matching the filter, newest first. The WHERE
// clause is assembled from the non-zero filter fields.
func (r *RequestRepo) List(ctx context.Context, f RequestFilter) ([]model.ServiceRequest, error) {
	var (
		conds []string
		args  []any
	)
	if f.RequesterID != 0 {
		conds = append(conds, "requester_id=?")
		args = append(args, f.RequesterID)
	}
	if f.AssigneeID != 0 {
		conds = append(conds, "assignee_id=?")
		args = append(args, f.AssigneeID)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conds = append(conds, "priority=?")
		args = append(args, f.Priority)
	}
	query := "SELECT " + requestColumns + " FROM service_requests"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ServiceRequest
	for rows.Next() {
		var (
			sr       model.ServiceRequest
			assignee sql.NullInt64
		)
		if err := rows.Scan(&sr.ID, &sr.RequesterID, &assignee, &sr.Title, &sr.Description,
			&sr.Category, &sr.Priority, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, err
		}
		if assignee.Valid {
			v := uint64(assignee.Int64)
			sr.AssigneeID = &v
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// UpdateStatus moves a request from one status to another. The UPDATE is
// conditional on the current status so concurrent transitions cannot both
// apply; the loser sees ErrConflict.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE service_requests SET status=?, updated_at=NOW() WHERE id=? AND status=?",
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM service_requests WHERE id=?", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// Assign sets the staff member working a request.
func (r *RequestRepo) Assign(ctx context.Context, id, assigneeID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE service_requests SET assignee_id=?, updated_at=NOW() WHERE id=?",
		assigneeID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM service_requests WHERE id=?", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// AddComment appends a comment to a request.
func (r *RequestRepo) AddComment(ctx context.Context, c *model.RequestComment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO request_comments (request_id, author_id, body) VALUES (?,?,?)",
		c.RequestID, c.AuthorID, c.Body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListComments returns a request's comments oldest first.
func (r *RequestRepo) ListComments(ctx context.Context, requestID uint64) ([]model.RequestComment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,request_id,author_id,body,created_at FROM request_comments WHERE request_id=? ORDER BY id",
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestComment
	for rows.Next() {
		var c model.RequestComment
		if err := rows.Scan(&c.ID, &c.RequestID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
