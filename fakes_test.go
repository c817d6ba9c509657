package authz

import (
	"context"

	"github.com/chargeangels/authz/logger"
)

// Single-tenant fakes for facade tests. The real store implementations
// live in stores/ and have their own tests.

type fakeOrgStore struct {
	tenants     map[string]*Tenant
	sites       map[string]*Site
	siteAreas   map[string]*SiteArea
	memberships map[string][]SiteMembership
}

func newFakeOrgStore() *fakeOrgStore {
	return &fakeOrgStore{
		tenants:     make(map[string]*Tenant),
		sites:       make(map[string]*Site),
		siteAreas:   make(map[string]*SiteArea),
		memberships: make(map[string][]SiteMembership),
	}
}

func (s *fakeOrgStore) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *fakeOrgStore) GetSite(ctx context.Context, tenantID, siteID string) (*Site, error) {
	site, ok := s.sites[siteID]
	if !ok {
		return nil, ErrNotFound
	}
	return site, nil
}

func (s *fakeOrgStore) GetSiteArea(ctx context.Context, tenantID, siteAreaID string) (*SiteArea, error) {
	area, ok := s.siteAreas[siteAreaID]
	if !ok {
		return nil, ErrNotFound
	}
	return area, nil
}

func (s *fakeOrgStore) GetUserSiteMemberships(ctx context.Context, tenantID, userID string) ([]SiteMembership, error) {
	return s.memberships[userID], nil
}

type fakeUserStore struct {
	users       map[string]*User
	tags        map[string]string
	createCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*User), tags: make(map[string]string)}
}

func (s *fakeUserStore) GetUserByTagID(ctx context.Context, tenantID, tagID string) (*User, error) {
	owner, ok := s.tags[tagID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.users[owner], nil
}

func (s *fakeUserStore) CreateUser(ctx context.Context, tenantID string, u *User) error {
	s.createCalls++
	for _, tag := range u.TagIDs {
		if owner, ok := s.tags[tag]; ok && owner != u.ID {
			return ErrTagAlreadyAssigned
		}
	}
	for _, tag := range u.TagIDs {
		s.tags[tag] = u.ID
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) UpdateUser(ctx context.Context, tenantID string, u *User) error {
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}

type fakeTransactionStore struct {
	transactions map[int]*Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{transactions: make(map[int]*Transaction)}
}

func (s *fakeTransactionStore) GetTransaction(ctx context.Context, tenantID string, id int) (*Transaction, error) {
	tx, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

type badgeEvent struct {
	tenantID          string
	chargingStationID string
	userID            string
}

type recordingNotifier struct {
	events []badgeEvent
}

func (n *recordingNotifier) NotifyUnknownUserBadged(ctx context.Context, tenantID, chargingStationID string, u *User) {
	n.events = append(n.events, badgeEvent{tenantID: tenantID, chargingStationID: chargingStationID, userID: u.ID})
}

type testEnv struct {
	auth     *Authorizations
	org      *fakeOrgStore
	users    *fakeUserStore
	txs      *fakeTransactionStore
	notifier *recordingNotifier
}

func newTestEnv(t interface{ Fatalf(string, ...any) }) *testEnv {
	ac, err := NewAccessControl()
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	env := &testEnv{
		org:      newFakeOrgStore(),
		users:    newFakeUserStore(),
		txs:      newFakeTransactionStore(),
		notifier: &recordingNotifier{},
	}
	env.auth = NewAuthorizations(ac, env.org, env.users, env.txs,
		WithLogger(logger.NewNullLogger()),
		WithNotifications(env.notifier))
	return env
}
