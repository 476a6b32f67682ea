package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/controller/dept"
	"github.com/oneid-io/oneid/internal/db/controller/group"
	"github.com/oneid-io/oneid/internal/db/controller/perm"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/models"
)

const (
	// RoleAdmin is held by superusers.
	RoleAdmin = "admin"
	// RoleManager is held by members of a manager group.
	RoleManager = "manager"
)

var (
	checks     *prometheus.CounterVec //nolint:gochecknoglobals
	checksOnce sync.Once              //nolint:gochecknoglobals
)

// Options tunes permission resolution.
type Options struct {
	// TransitiveGroups makes members of a group inherit the grants of its ancestor groups.
	TransitiveGroups bool
	// StaticRoles assigns extra roles per username.
	StaticRoles map[string][]string
}

// Resolution is the outcome of resolving one user.
type Resolution struct {
	// Perms holds permission uids ordered by permission id.
	Perms []string
	// Roles holds role names: admin, manager, then static roles.
	Roles     []string
	IsAdmin   bool
	IsManager bool
}

// Has reports whether uid is among the resolved permissions.
func (r *Resolution) Has(uid string) bool {
	return slices.Contains(r.Perms, uid)
}

// Service resolves permissions and roles of users and answers authorization checks.
type Service struct {
	db   *gorm.DB
	opts Options
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, opts Options) *Service {
	checksOnce.Do(func() {
		checks = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_checks_total",
				Help: "Number of permission checks, differentiated by result.",
			},
			[]string{"result"},
		)
	})

	return &Service{db: db, opts: opts}
}

// ResolvePermissions loads the active user and resolves it.
func (s *Service) ResolvePermissions(ctx context.Context, userID uint64) (*Resolution, error) {
	u, err := user.GetByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	return s.Resolve(ctx, u)
}

// Resolve computes the permissions and roles of u in two phases. The base set
// is the union of the grants of the user's groups and depts, or every active
// permission for a superuser. Explicit user overrides are applied on top:
// false removes a permission, true adds it.
func (s *Service) Resolve(ctx context.Context, u *models.User) (*Resolution, error) {
	base, err := s.baseGrants(ctx, u)
	if err != nil {
		return nil, err
	}

	overrides, err := perm.UserOverrides(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}

	for id, value := range overrides {
		if value {
			base[id] = true
		} else {
			delete(base, id)
		}
	}

	ids := make([]uint, 0, len(base))
	for id := range base {
		ids = append(ids, id)
	}

	perms, err := perm.ByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Perms: make([]string, 0, len(perms)), IsAdmin: u.IsAdmin}
	for _, p := range perms {
		res.Perms = append(res.Perms, p.UID)
	}

	res.IsManager, err = group.InManagerGroup(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}

	res.Roles = s.roles(u, res)

	return res, nil
}

func (s *Service) baseGrants(ctx context.Context, u *models.User) (map[uint]bool, error) {
	set := make(map[uint]bool)

	if u.IsAdmin {
		all, err := perm.All(ctx, s.db)
		if err != nil {
			return nil, err
		}

		for _, p := range all {
			set[p.ID] = true
		}

		return set, nil
	}

	groupIDs, err := group.GroupsOf(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}

	if s.opts.TransitiveGroups && len(groupIDs) > 0 {
		ancestors, err := group.Ancestors(ctx, s.db, groupIDs)
		if err != nil {
			return nil, err
		}

		groupIDs = append(groupIDs, ancestors...)
	}

	fromGroups, err := perm.GrantedToGroups(ctx, s.db, groupIDs)
	if err != nil {
		return nil, err
	}

	deptIDs, err := dept.DeptsOf(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}

	fromDepts, err := perm.GrantedToDepts(ctx, s.db, deptIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range append(fromGroups, fromDepts...) {
		set[id] = true
	}

	return set, nil
}

func (s *Service) roles(u *models.User, res *Resolution) []string {
	roles := []string{}

	if res.IsAdmin {
		roles = append(roles, RoleAdmin)
	}

	if res.IsManager {
		roles = append(roles, RoleManager)
	}

	static, ok := s.opts.StaticRoles[u.Username]
	if !ok {
		// config keys arrive lowercased
		static = s.opts.StaticRoles[strings.ToLower(u.Username)]
	}

	for _, r := range static {
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}

	return roles
}

// RequirePermission returns the resolution of the user if it holds uid and
// apperr.ErrForbidden otherwise. A missing or killed user is forbidden as well.
func (s *Service) RequirePermission(ctx context.Context, userID uint64, uid string) (*Resolution, error) {
	res, err := s.ResolvePermissions(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		checks.WithLabelValues("denied").Inc()
		return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrForbidden)
	}

	if err != nil {
		return nil, err
	}

	if !res.Has(uid) {
		checks.WithLabelValues("denied").Inc()
		return res, fmt.Errorf("permission %s: %w", uid, apperr.ErrForbidden)
	}

	checks.WithLabelValues("granted").Inc()

	return res, nil
}
