package stores

import (
	"context"
	"sync"

	"github.com/chargeangels/authz"
)

// In-memory collaborator stores, used in tests and small deployments.

type MemoryOrganizationStore struct {
	mu          sync.RWMutex
	tenants     map[string]*authz.Tenant
	sites       map[string]map[string]*authz.Site
	siteAreas   map[string]map[string]*authz.SiteArea
	memberships map[string]map[string][]authz.SiteMembership
}

func NewMemoryOrganizationStore() *MemoryOrganizationStore {
	return &MemoryOrganizationStore{
		tenants:     make(map[string]*authz.Tenant),
		sites:       make(map[string]map[string]*authz.Site),
		siteAreas:   make(map[string]map[string]*authz.SiteArea),
		memberships: make(map[string]map[string][]authz.SiteMembership),
	}
}

func (s *MemoryOrganizationStore) SaveTenant(t *authz.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *t
	s.tenants[t.ID] = &dup
}

func (s *MemoryOrganizationStore) SaveSite(tenantID string, site *authz.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sites[tenantID] == nil {
		s.sites[tenantID] = make(map[string]*authz.Site)
	}
	dup := *site
	s.sites[tenantID][site.ID] = &dup
}

func (s *MemoryOrganizationStore) SaveSiteArea(tenantID string, area *authz.SiteArea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.siteAreas[tenantID] == nil {
		s.siteAreas[tenantID] = make(map[string]*authz.SiteArea)
	}
	dup := *area
	s.siteAreas[tenantID][area.ID] = &dup
}

func (s *MemoryOrganizationStore) AssignUserToSite(tenantID, userID string, m authz.SiteMembership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberships[tenantID] == nil {
		s.memberships[tenantID] = make(map[string][]authz.SiteMembership)
	}
	rows := s.memberships[tenantID][userID]
	for i, row := range rows {
		if row.SiteID == m.SiteID {
			rows[i] = m
			return
		}
	}
	s.memberships[tenantID][userID] = append(rows, m)
}

func (s *MemoryOrganizationStore) GetTenant(ctx context.Context, tenantID string) (*authz.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, authz.ErrNotFound
	}
	dup := *t
	return &dup, nil
}

func (s *MemoryOrganizationStore) GetSite(ctx context.Context, tenantID, siteID string) (*authz.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	site, ok := s.sites[tenantID][siteID]
	if !ok {
		return nil, authz.ErrNotFound
	}
	dup := *site
	return &dup, nil
}

func (s *MemoryOrganizationStore) GetSiteArea(ctx context.Context, tenantID, siteAreaID string) (*authz.SiteArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	area, ok := s.siteAreas[tenantID][siteAreaID]
	if !ok {
		return nil, authz.ErrNotFound
	}
	dup := *area
	return &dup, nil
}

func (s *MemoryOrganizationStore) GetUserSiteMemberships(ctx context.Context, tenantID, userID string) ([]authz.SiteMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]authz.SiteMembership(nil), s.memberships[tenantID][userID]...), nil
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]map[string]*authz.User
	tags  map[string]map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]map[string]*authz.User),
		tags:  make(map[string]map[string]string),
	}
}

func (s *MemoryUserStore) CreateUser(ctx context.Context, tenantID string, u *authz.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tags[tenantID] == nil {
		s.tags[tenantID] = make(map[string]string)
	}
	for _, tag := range u.TagIDs {
		if owner, ok := s.tags[tenantID][tag]; ok && owner != u.ID {
			return authz.ErrTagAlreadyAssigned
		}
	}
	for _, tag := range u.TagIDs {
		s.tags[tenantID][tag] = u.ID
	}
	if s.users[tenantID] == nil {
		s.users[tenantID] = make(map[string]*authz.User)
	}
	dup := *u
	dup.TagIDs = append([]string(nil), u.TagIDs...)
	s.users[tenantID][u.ID] = &dup
	return nil
}

func (s *MemoryUserStore) UpdateUser(ctx context.Context, tenantID string, u *authz.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[tenantID][u.ID]; !ok {
		return authz.ErrNotFound
	}
	dup := *u
	dup.TagIDs = append([]string(nil), u.TagIDs...)
	s.users[tenantID][u.ID] = &dup
	for _, tag := range u.TagIDs {
		s.tags[tenantID][tag] = u.ID
	}
	return nil
}

func (s *MemoryUserStore) GetUser(ctx context.Context, tenantID, userID string) (*authz.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUserLocked(tenantID, userID)
}

func (s *MemoryUserStore) getUserLocked(tenantID, userID string) (*authz.User, error) {
	u, ok := s.users[tenantID][userID]
	if !ok {
		return nil, authz.ErrNotFound
	}
	dup := *u
	dup.TagIDs = append([]string(nil), u.TagIDs...)
	return &dup, nil
}

func (s *MemoryUserStore) GetUserByTagID(ctx context.Context, tenantID, tagID string) (*authz.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.tags[tenantID][tagID]
	if !ok {
		return nil, authz.ErrNotFound
	}
	return s.getUserLocked(tenantID, owner)
}

type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]map[int]*authz.Transaction
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{transactions: make(map[string]map[int]*authz.Transaction)}
}

func (s *MemoryTransactionStore) SaveTransaction(tenantID string, tx *authz.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transactions[tenantID] == nil {
		s.transactions[tenantID] = make(map[int]*authz.Transaction)
	}
	dup := *tx
	s.transactions[tenantID][tx.ID] = &dup
}

func (s *MemoryTransactionStore) GetTransaction(ctx context.Context, tenantID string, id int) (*authz.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[tenantID][id]
	if !ok {
		return nil, authz.ErrNotFound
	}
	dup := *tx
	return &dup, nil
}
