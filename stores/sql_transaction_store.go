package stores

import (
	"context"
	"time"

	"github.com/oarkflow/squealx"

	"github.com/chargeangels/authz"
)

// SQLTransactionStore persists charging sessions.
type SQLTransactionStore struct {
	db *squealx.DB
}

func NewSQLTransactionStore(db *squealx.DB) *SQLTransactionStore {
	return &SQLTransactionStore{db: db}
}

func (s *SQLTransactionStore) SaveTransaction(ctx context.Context, tenantID string, tx *authz.Transaction) error {
	q := `INSERT OR REPLACE INTO transactions(id, tenant_id, user_id, tag_id, charging_station_id, connector_id, created_at)
		VALUES(:id, :tenant_id, :user_id, :tag_id, :charging_station_id, :connector_id, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": tx.ID, "tenant_id": tenantID, "user_id": tx.UserID, "tag_id": tx.TagID,
		"charging_station_id": tx.ChargingStationID, "connector_id": tx.ConnectorID,
		"created_at": time.Now(),
	})
	return err
}

func (s *SQLTransactionStore) GetTransaction(ctx context.Context, tenantID string, id int) (*authz.Transaction, error) {
	q := `SELECT id, user_id, tag_id, charging_station_id, connector_id FROM transactions WHERE id = :id AND tenant_id = :tenant_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, authz.ErrNotFound
	}
	var tx authz.Transaction
	if err := r.Scan(&tx.ID, &tx.UserID, &tx.TagID, &tx.ChargingStationID, &tx.ConnectorID); err != nil {
		return nil, err
	}
	return &tx, nil
}
