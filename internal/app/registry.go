package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/proto"
)

// room holds one space's occupants. Its mutex is the only lock taken on
// the hot paths, so unrelated spaces never contend. dead marks a room
// that has been pruned from the registry; an admitter that looked the
// room up before the prune must not insert into it.
type room struct {
	mu     sync.RWMutex
	dead   bool
	byID   map[core.SessionID]core.Member
	byUser map[domain.UserID]core.SessionID
}

func newRoom() *room {
	return &room{
		byID:   make(map[core.SessionID]core.Member),
		byUser: make(map[domain.UserID]core.SessionID),
	}
}

// Registry is the single source of truth for space → occupants.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.SpaceID]*room

	proximityRange int
}

func NewRegistry(proximityRange int) *Registry {
	return &Registry{
		rooms:          make(map[domain.SpaceID]*room),
		proximityRange: proximityRange,
	}
}

func (r *Registry) getOrCreate(id domain.SpaceID) *room {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[id]; ok {
		return rm
	}
	rm = newRoom()
	r.rooms[id] = rm
	return rm
}

func (r *Registry) get(id domain.SpaceID) (*room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	return rm, ok
}

// Admit adds a member to a space. The duplicate-identity check, the
// insert, the welcome snapshot and the arrival broadcast all happen
// under one room lock, so joins to a room serialize: concurrent joins
// with the same user id cannot both succeed, and every other occupant
// either shows up in the joiner's snapshot or gets the arrival frame,
// never both. welcome runs with the room locked and must not call back
// into the registry. A room pruned between lookup and lock is detected
// by its dead mark and the lookup retried, so an admit never lands in a
// room the registry no longer references.
func (r *Registry) Admit(id domain.SpaceID, m core.Member, arrival core.Frame, welcome func(others []core.Member)) error {
	for {
		rm := r.getOrCreate(id)
		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}
		if _, ok := rm.byUser[m.UserID()]; ok {
			rm.mu.Unlock()
			return domain.ErrDuplicateUser
		}
		others := make([]core.Member, 0, len(rm.byID))
		for _, o := range rm.byID {
			others = append(others, o)
		}
		rm.byID[m.ID()] = m
		rm.byUser[m.UserID()] = m.ID()
		occupants := len(rm.byID)
		if welcome != nil {
			welcome(others)
		}
		if arrival != nil {
			for _, o := range others {
				if err := o.Conn().TrySend(arrival); err != nil {
					log.Debug().Str("module", "app.registry").Str("space", string(id)).Str("sid", string(o.ID())).Err(err).Msg("arrival drop")
				}
			}
		}
		rm.mu.Unlock()
		log.Info().Str("module", "app.registry").Str("space", string(id)).Str("sid", string(m.ID())).Str("user", string(m.UserID())).Int("occupants", occupants).Msg("member admitted")
		return nil
	}
}

// Remove is idempotent; removing an absent member is a no-op. The last
// member out prunes the empty room.
func (r *Registry) Remove(id domain.SpaceID, m core.Member) {
	rm, ok := r.get(id)
	if !ok {
		return
	}
	rm.mu.Lock()
	cur, present := rm.byID[m.ID()]
	if present {
		delete(rm.byID, m.ID())
		if sid, ok := rm.byUser[cur.UserID()]; ok && sid == m.ID() {
			delete(rm.byUser, cur.UserID())
		}
	}
	empty := len(rm.byID) == 0
	rm.mu.Unlock()

	if !present {
		return
	}
	log.Info().Str("module", "app.registry").Str("space", string(id)).Str("sid", string(m.ID())).Msg("member removed")

	if empty {
		r.mu.Lock()
		if cand, ok := r.rooms[id]; ok && cand == rm {
			rm.mu.Lock()
			if len(rm.byID) == 0 {
				rm.dead = true
				delete(r.rooms, id)
				log.Info().Str("module", "app.registry").Str("space", string(id)).Msg("room pruned")
			}
			rm.mu.Unlock()
		}
		r.mu.Unlock()
	}
}

// Broadcast delivers a frame to every occupant except the excluded one.
// Best effort per recipient: a full or dead connection is dropped on,
// never propagated back to the broadcaster.
func (r *Registry) Broadcast(id domain.SpaceID, frame core.Frame, excluding core.SessionID) {
	rm, ok := r.get(id)
	if !ok {
		return
	}
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for sid, m := range rm.byID {
		if sid == excluding {
			continue
		}
		if err := m.Conn().TrySend(frame); err != nil {
			log.Debug().Str("module", "app.registry").Str("space", string(id)).Str("sid", string(sid)).Err(err).Msg("broadcast drop")
		}
	}
}

// FindByUser resolves an identity to its live session within one space.
func (r *Registry) FindByUser(id domain.SpaceID, user domain.UserID) (core.Member, bool) {
	rm, ok := r.get(id)
	if !ok {
		return nil, false
	}
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	sid, ok := rm.byUser[user]
	if !ok {
		return nil, false
	}
	m, ok := rm.byID[sid]
	return m, ok
}

// ProximitySweep recomputes closeness between the mover and every other
// occupant and notifies both sides. Evaluated fresh on every move; both
// transitions matter, the far side needs close:false to hang up.
func (r *Registry) ProximitySweep(id domain.SpaceID, mover core.Member) {
	rm, ok := r.get(id)
	if !ok {
		return
	}
	mx, my := mover.Position()

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for sid, other := range rm.byID {
		if sid == mover.ID() {
			continue
		}
		ox, oy := other.Position()
		dx, dy := mx-ox, my-oy
		near := dx*dx+dy*dy <= r.proximityRange*r.proximityRange

		toMover, err := proto.Marshal(proto.TypeProximity, proto.Proximity{
			WithID: string(other.ID()), WithUserID: other.UserID(), Close: near,
		})
		if err == nil {
			_ = mover.Conn().TrySend(toMover)
		}
		toOther, err := proto.Marshal(proto.TypeProximity, proto.Proximity{
			WithID: string(mover.ID()), WithUserID: mover.UserID(), Close: near,
		})
		if err == nil {
			_ = other.Conn().TrySend(toOther)
		}
	}
}

// Stats reports live room and occupant counts for the HTTP surface.
func (r *Registry) Stats() (rooms, occupants int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms = len(r.rooms)
	for _, rm := range r.rooms {
		rm.mu.RLock()
		occupants += len(rm.byID)
		rm.mu.RUnlock()
	}
	return rooms, occupants
}
