package stores

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chargeangels/authz"
)

// RedisAssignmentStore keeps user site assignments in Redis sets:
//
//	siteusers:{tenant}:{user}   assigned site IDs
//	siteadmins:{tenant}:{user}  sites the user administers
//	siteowners:{tenant}:{user}  sites the user owns
//
// It implements authz.MembershipStore for token building and the
// dynamic data sources. Company IDs are not tracked here; use the SQL
// organization store when company-scoped grants matter.
type RedisAssignmentStore struct {
	client *redis.Client
}

func NewRedisAssignmentStore(client *redis.Client) *RedisAssignmentStore {
	return &RedisAssignmentStore{client: client}
}

func (r *RedisAssignmentStore) usersKey(tenantID, userID string) string {
	return fmt.Sprintf("siteusers:%s:%s", tenantID, userID)
}

func (r *RedisAssignmentStore) adminsKey(tenantID, userID string) string {
	return fmt.Sprintf("siteadmins:%s:%s", tenantID, userID)
}

func (r *RedisAssignmentStore) ownersKey(tenantID, userID string) string {
	return fmt.Sprintf("siteowners:%s:%s", tenantID, userID)
}

func (r *RedisAssignmentStore) AssignSite(ctx context.Context, tenantID, userID, siteID string, siteAdmin, siteOwner bool) error {
	if err := r.client.SAdd(ctx, r.usersKey(tenantID, userID), siteID).Err(); err != nil {
		return err
	}
	if siteAdmin {
		if err := r.client.SAdd(ctx, r.adminsKey(tenantID, userID), siteID).Err(); err != nil {
			return err
		}
	} else if err := r.client.SRem(ctx, r.adminsKey(tenantID, userID), siteID).Err(); err != nil {
		return err
	}
	if siteOwner {
		return r.client.SAdd(ctx, r.ownersKey(tenantID, userID), siteID).Err()
	}
	return r.client.SRem(ctx, r.ownersKey(tenantID, userID), siteID).Err()
}

func (r *RedisAssignmentStore) UnassignSite(ctx context.Context, tenantID, userID, siteID string) error {
	if err := r.client.SRem(ctx, r.usersKey(tenantID, userID), siteID).Err(); err != nil {
		return err
	}
	if err := r.client.SRem(ctx, r.adminsKey(tenantID, userID), siteID).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, r.ownersKey(tenantID, userID), siteID).Err()
}

func (r *RedisAssignmentStore) GetUserSiteMemberships(ctx context.Context, tenantID, userID string) ([]authz.SiteMembership, error) {
	siteIDs, err := r.client.SMembers(ctx, r.usersKey(tenantID, userID)).Result()
	if err != nil {
		return nil, err
	}
	adminIDs, err := r.client.SMembers(ctx, r.adminsKey(tenantID, userID)).Result()
	if err != nil {
		return nil, err
	}
	ownerIDs, err := r.client.SMembers(ctx, r.ownersKey(tenantID, userID)).Result()
	if err != nil {
		return nil, err
	}
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	out := make([]authz.SiteMembership, 0, len(siteIDs))
	for _, id := range siteIDs {
		out = append(out, authz.SiteMembership{SiteID: id, SiteAdmin: admins[id], SiteOwner: owners[id]})
	}
	return out, nil
}
