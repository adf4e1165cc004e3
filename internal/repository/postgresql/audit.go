package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/attendly/attendly-backend-go/internal/domain/audit"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditLogger(db *database.DB) audit.Logger {
	return &auditRepository{db: db}
}

// Record implements audit.Logger. Entries are append-only.
func (a *auditRepository) Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any) error {
	q := GetQuerier(ctx, a.db)

	var payload []byte
	if metadata != nil {
		var err error
		payload, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_log (
			id, actor_id, action, entity_type, entity_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := q.Exec(ctx, query, uuid.New().String(), actorID, action, entityType, entityID, payload); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}
