package repository

import (
	"context"

	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/Ogyrecheg/yatube/internal/models"
)

// Audit action names written by handlers and the CLI.
const (
	ActionCreatePost  = "CREATE_POST"
	ActionEditPost    = "EDIT_POST"
	ActionCreateUser  = "CREATE_USER"
	ActionCreateGroup = "CREATE_GROUP"
	ActionDeleteGroup = "DELETE_GROUP"
)

// AuditRepository appends to and reads the audit trail.
//
// Immutability Note:
//
//	Audit logs are never modified or deleted once created.
type AuditRepository struct{}

// NewAuditRepository creates and returns a new AuditRepository instance.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Log creates a new audit log entry.
//
// Side Effects:
//   - Sets entry.ID to the generated audit log ID
//   - Sets entry.CreatedAt to the server timestamp
//
// Example:
//
//	entry := &models.AuditLog{
//	    ActorID:    &userID,
//	    Action:     repository.ActionCreatePost,
//	    ObjectType: "post",
//	    ObjectID:   &post.ID,
//	    IPAddress:  c.IP(),
//	    UserAgent:  c.Get("User-Agent"),
//	}
//	err := repo.Log(ctx, entry)
func (r *AuditRepository) Log(ctx context.Context, entry *models.AuditLog) error {
	query := `
        INSERT INTO audit_logs (actor_id, action, object_type, object_id, ip_address, user_agent)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	return database.DB.QueryRow(ctx, query,
		entry.ActorID, entry.Action, entry.ObjectType, entry.ObjectID, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent returns at most limit entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
        SELECT id, actor_id, action, object_type, object_id, ip_address, user_agent, created_at
        FROM audit_logs
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `
	rows, err := database.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID, // NULL for CLI actions
			&entry.Action,
			&entry.ObjectType,
			&entry.ObjectID,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
