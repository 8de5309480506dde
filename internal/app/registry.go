package app

import (
	"time"

	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry tracks known users and the bidirectional user <-> connection
// table. A user has at most one bound connection at a time.
//
// Registry is not safe for concurrent use; the orchestrator serialises it.
type Registry struct {
	now    func() time.Time
	users  map[domain.UserID]*domain.User
	order  []domain.UserID
	byConn map[core.ConnID]domain.UserID
	byUser map[domain.UserID]core.ConnID
}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		now:    now,
		users:  make(map[domain.UserID]*domain.User),
		byConn: make(map[core.ConnID]domain.UserID),
		byUser: make(map[domain.UserID]core.ConnID),
	}
}

// Register allocates a fresh id. Names are display labels, so duplicates
// are allowed.
func (r *Registry) Register(name string, role domain.Role) (domain.User, error) {
	u, err := domain.NewUser("", name, role, r.now())
	if err != nil {
		return domain.User{}, err
	}
	u.Online = true
	r.add(u)
	log.Info().Str("module", "app.registry").Str("user", string(u.ID)).Str("role", string(role)).Msg("registered user")
	return *u, nil
}

// Connect creates the user on first sight or marks an existing one online,
// then binds conn to it. A previous binding of the same user is dropped so
// a late disconnect of the old connection cannot take the user offline.
// An existing user keeps its name and role.
func (r *Registry) Connect(id domain.UserID, name string, role domain.Role, conn core.ConnID) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		var err error
		u, err = domain.NewUser(id, name, role, r.now())
		if err != nil {
			return domain.User{}, err
		}
		r.add(u)
		log.Info().Str("module", "app.registry").Str("user", string(u.ID)).Msg("created user on connect")
	}
	if prev, bound := r.byUser[u.ID]; bound {
		delete(r.byConn, prev)
	}
	if other, bound := r.byConn[conn]; bound && other != u.ID {
		r.unbindUser(other)
		r.users[other].Online = false
	}
	u.Online = true
	r.byConn[conn] = u.ID
	r.byUser[u.ID] = conn
	log.Info().Str("module", "app.registry").Str("user", string(u.ID)).Str("conn", string(conn)).Msg("bound connection")
	return *u, nil
}

// Disconnect marks the user bound to conn offline. ok is false when conn
// was never bound, e.g. it closed before joining.
func (r *Registry) Disconnect(conn core.ConnID) (domain.User, bool) {
	id, ok := r.byConn[conn]
	if !ok {
		return domain.User{}, false
	}
	u := r.users[id]
	r.unbindUser(id)
	u.Online = false
	log.Info().Str("module", "app.registry").Str("user", string(id)).Str("conn", string(conn)).Msg("unbound connection")
	return *u, true
}

// SetOffline marks id offline and drops its connection binding.
func (r *Registry) SetOffline(id domain.UserID) (domain.User, bool) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	r.unbindUser(id)
	u.Online = false
	log.Info().Str("module", "app.registry").Str("user", string(id)).Msg("set offline")
	return *u, true
}

func (r *Registry) Get(id domain.UserID) (domain.User, bool) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

func (r *Registry) UserOf(conn core.ConnID) (domain.User, bool) {
	id, ok := r.byConn[conn]
	if !ok {
		return domain.User{}, false
	}
	return r.Get(id)
}

func (r *Registry) ConnOf(id domain.UserID) (core.ConnID, bool) {
	c, ok := r.byUser[id]
	return c, ok
}

// List returns every known user in registration order.
func (r *Registry) List() []domain.User {
	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.users[id])
	}
	return out
}

// Online returns the users currently online in registration order.
func (r *Registry) Online() []domain.User {
	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		if u := r.users[id]; u.Online {
			out = append(out, *u)
		}
	}
	return out
}

func (r *Registry) add(u *domain.User) {
	r.users[u.ID] = u
	r.order = append(r.order, u.ID)
}

func (r *Registry) unbindUser(id domain.UserID) {
	if conn, ok := r.byUser[id]; ok {
		delete(r.byConn, conn)
	}
	delete(r.byUser, id)
}
