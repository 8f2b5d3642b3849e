// Package clinicctx holds a user's clinic collection and their active
// clinic selection. It is convenience state for choosing a tenant, not an
// access check: every clinic-scoped request is still authorized by the
// tenant guard.
package clinicctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// ErrUnknownClinic is returned when selecting a clinic that is not in the
// current collection.
var ErrUnknownClinic = errors.New("clinic is not in the user's clinic list")

// Store persists the active clinic id of a user.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	Set(ctx context.Context, userID, clinicID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Key is the storage key for a user's selection.
func Key(userID uuid.UUID) string {
	return "activeClinicId:" + userID.String()
}

// Snapshot is a copy of the context state.
type Snapshot struct {
	Clinics      []model.UserClinic `json:"clinics"`
	ActiveClinic *model.UserClinic  `json:"active_clinic"`
}

// Context is one user's clinic collection plus the active selection.
type Context struct {
	mu      sync.RWMutex
	userID  uuid.UUID
	store   Store
	clinics []model.UserClinic
	active  *model.UserClinic
}

func New(userID uuid.UUID, store Store) *Context {
	return &Context{userID: userID, store: store}
}

// Load hydrates the context: the persisted selection is taken as the
// current one and the collection is then replaced through SetClinics, so
// a selection that no longer names a clinic falls back the same way.
func (c *Context) Load(ctx context.Context, clinics []model.UserClinic) error {
	persisted, ok, err := c.store.Get(ctx, c.userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", c.userID.String()).Msg("failed to read active clinic")
		ok = false
	}

	c.mu.Lock()
	c.active = nil
	if ok && persisted != uuid.Nil {
		c.active = &model.UserClinic{ID: persisted}
	}
	c.mu.Unlock()

	return c.SetClinics(ctx, clinics)
}

// Clinics returns a copy of the collection.
func (c *Context) Clinics() []model.UserClinic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyClinics(c.clinics)
}

// Active returns a copy of the active clinic, or nil when there is none.
func (c *Context) Active() *model.UserClinic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return nil
	}
	a := *c.active
	return &a
}

// Snapshot returns the collection and active clinic together.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{Clinics: copyClinics(c.clinics)}
	if c.active != nil {
		a := *c.active
		s.ActiveClinic = &a
	}
	return s
}

// SetActive selects clinicID and persists the choice.
func (c *Context) SetActive(ctx context.Context, clinicID uuid.UUID) error {
	c.mu.Lock()
	found := c.find(clinicID)
	if found == nil {
		c.mu.Unlock()
		return ErrUnknownClinic
	}
	c.active = found
	c.mu.Unlock()

	return c.persist(ctx, clinicID)
}

// SetClinics replaces the collection. If the active clinic is missing
// from the new collection, the first clinic becomes active, or none when
// the collection is empty.
func (c *Context) SetClinics(ctx context.Context, clinics []model.UserClinic) error {
	c.mu.Lock()
	var prev uuid.UUID
	if c.active != nil {
		prev = c.active.ID
	}
	c.clinics = copyClinics(clinics)
	c.active = nil
	if prev != uuid.Nil {
		c.active = c.find(prev)
	}
	if c.active == nil && len(c.clinics) > 0 {
		c.active = &c.clinics[0]
	}
	next := c.activeID()
	c.mu.Unlock()

	if next == prev {
		return nil
	}
	return c.persist(ctx, next)
}

func (c *Context) persist(ctx context.Context, clinicID uuid.UUID) error {
	var err error
	if clinicID == uuid.Nil {
		err = c.store.Delete(ctx, c.userID)
	} else {
		err = c.store.Set(ctx, c.userID, clinicID)
	}
	if err != nil {
		return fmt.Errorf("failed to persist active clinic: %w", err)
	}
	return nil
}

// find returns a pointer into c.clinics. Callers hold c.mu.
func (c *Context) find(id uuid.UUID) *model.UserClinic {
	for i := range c.clinics {
		if c.clinics[i].ID == id {
			return &c.clinics[i]
		}
	}
	return nil
}

func (c *Context) activeID() uuid.UUID {
	if c.active == nil {
		return uuid.Nil
	}
	return c.active.ID
}

func copyClinics(in []model.UserClinic) []model.UserClinic {
	out := make([]model.UserClinic, len(in))
	copy(out, in)
	return out
}
