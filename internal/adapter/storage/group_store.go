// internal/adapter/storage/group_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// GroupStore reads group membership replicated from the messaging service
type GroupStore struct {
	db *pgxpool.Pool
}

// NewGroupStore creates a new group store
func NewGroupStore(db *pgxpool.Pool) *GroupStore {
	return &GroupStore{
		db: db,
	}
}

// MemberIDs returns the member user IDs of a group in membership order
func (s *GroupStore) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1
		ORDER BY position ASC, joined_at ASC
	`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		members = append(members, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
