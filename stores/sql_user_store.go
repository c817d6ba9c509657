package stores

import (
	"context"
	"fmt"

	"github.com/oarkflow/squealx"

	"github.com/chargeangels/authz"
)

// SQLUserStore persists users and their badge tags. The primary key on
// (tenant_id, tag_id) enforces tag uniqueness, which makes badge
// provisioning idempotent under concurrency.
type SQLUserStore struct {
	db *squealx.DB
}

func NewSQLUserStore(db *squealx.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

func (s *SQLUserStore) CreateUser(ctx context.Context, tenantID string, u *authz.User) error {
	// Claim the tags first so a lost race never leaves a half-created
	// user owning nothing.
	for _, tag := range u.TagIDs {
		res, err := s.db.NamedExecContext(ctx,
			`INSERT OR IGNORE INTO user_tags(tenant_id, tag_id, user_id) VALUES(:tenant_id, :tag_id, :user_id)`,
			map[string]any{"tenant_id": tenantID, "tag_id": tag, "user_id": u.ID})
		if err != nil {
			return fmt.Errorf("claim tag %s: %w", tag, err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			owner, oerr := s.tagOwner(ctx, tenantID, tag)
			if oerr == nil && owner != u.ID {
				return authz.ErrTagAlreadyAssigned
			}
		}
	}
	q := `INSERT INTO users(id, tenant_id, email, name, first_name, phone, mobile, role, status, deleted, created_at)
		VALUES(:id, :tenant_id, :email, :name, :first_name, :phone, :mobile, :role, :status, :deleted, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": u.ID, "tenant_id": tenantID, "email": u.Email, "name": u.Name,
		"first_name": u.FirstName, "phone": u.Phone, "mobile": u.Mobile,
		"role": string(u.Role), "status": string(u.Status),
		"deleted": boolToInt(u.Deleted), "created_at": u.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

func (s *SQLUserStore) UpdateUser(ctx context.Context, tenantID string, u *authz.User) error {
	q := `UPDATE users SET email=:email, name=:name, first_name=:first_name, phone=:phone, mobile=:mobile,
		role=:role, status=:status, deleted=:deleted WHERE id=:id AND tenant_id=:tenant_id`
	res, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": u.ID, "tenant_id": tenantID, "email": u.Email, "name": u.Name,
		"first_name": u.FirstName, "phone": u.Phone, "mobile": u.Mobile,
		"role": string(u.Role), "status": string(u.Status), "deleted": boolToInt(u.Deleted),
	})
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return authz.ErrNotFound
	}
	return nil
}

func (s *SQLUserStore) GetUserByTagID(ctx context.Context, tenantID, tagID string) (*authz.User, error) {
	owner, err := s.tagOwner(ctx, tenantID, tagID)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, tenantID, owner)
}

func (s *SQLUserStore) GetUser(ctx context.Context, tenantID, userID string) (*authz.User, error) {
	q := `SELECT id, email, name, first_name, phone, mobile, role, status, deleted, created_at
		FROM users WHERE id = :id AND tenant_id = :tenant_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": userID, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, authz.ErrNotFound
	}
	var u authz.User
	var role, status string
	var deleted int
	var createdRaw any
	if err := r.Scan(&u.ID, &u.Email, &u.Name, &u.FirstName, &u.Phone, &u.Mobile, &role, &status, &deleted, &createdRaw); err != nil {
		return nil, err
	}
	u.Role = authz.Role(role)
	u.Status = authz.UserStatus(status)
	u.Deleted = deleted != 0
	u.CreatedAt = scanTime(createdRaw)
	u.TagIDs, err = s.userTags(ctx, tenantID, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLUserStore) tagOwner(ctx context.Context, tenantID, tagID string) (string, error) {
	q := `SELECT user_id FROM user_tags WHERE tenant_id = :tenant_id AND tag_id = :tag_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"tenant_id": tenantID, "tag_id": tagID})
	if err != nil {
		return "", err
	}
	defer r.Close()
	if !r.Next() {
		return "", authz.ErrNotFound
	}
	var owner string
	if err := r.Scan(&owner); err != nil {
		return "", err
	}
	return owner, nil
}

func (s *SQLUserStore) userTags(ctx context.Context, tenantID, userID string) ([]string, error) {
	q := `SELECT tag_id FROM user_tags WHERE tenant_id = :tenant_id AND user_id = :user_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"tenant_id": tenantID, "user_id": userID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var tags []string
	for r.Next() {
		var tag string
		if err := r.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
