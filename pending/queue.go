// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package pending

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// Queue is the authoritative, durable list of pending actions. Every
// mutation is persisted before it is committed to memory, so a process
// restart can neither lose nor duplicate an action's status. All mutations
// are serialized by a single mutex, which makes racing terminal transitions
// resolve deterministically to a single winner.
type Queue struct {
	mutex   sync.Mutex
	db      db.Database
	actions map[string]*Action
	// onChanged subscribers receive the pending count after every committed
	// mutation that may have changed it.
	onChanged []func(pendingCount int)
}

// NewQueue creates a queue over the given database, reloading any
// previously persisted actions. Pass a prefixed db.NewTable to isolate the
// queue's keyspace.
func NewQueue(database db.Database) (*Queue, error) {
	if database == nil {
		return nil, errors.New("database must not be nil")
	}

	q := &Queue{db: database, actions: make(map[string]*Action)}

	it := database.NewIterator()
	defer it.Close()
	for it.Next() {
		var a Action
		if err := json.Unmarshal(it.ValueBytes(), &a); err != nil {
			return nil, errors.WithMessagef(err, "unmarshaling action %q", it.Key())
		}
		q.actions[a.ID] = &a
	}
	if err := it.Close(); err != nil {
		return nil, errors.WithMessage(err, "loading actions")
	}

	return q, nil
}

// NewID generates a fresh action id.
func NewID() string { return uuid.NewString() }

// OnChanged registers a subscriber that is called with the current pending
// count after every committed mutation. The badge counter collaborator
// subscribes here. The callback must not call back into the queue's
// mutating methods.
func (q *Queue) OnChanged(fn func(pendingCount int)) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.onChanged = append(q.onChanged, fn)
}

// Add appends a new action to the queue. The action must have a fresh id
// and status pending. The action is durably persisted before Add returns.
func (q *Queue) Add(a *Action) error {
	if a.ID == "" {
		return errors.New("action must have an id")
	}
	if a.Status != StatusPending {
		return errors.Errorf("new action must be pending, got %q", a.Status)
	}

	q.mutex.Lock()
	if _, ok := q.actions[a.ID]; ok {
		q.mutex.Unlock()
		return errors.Errorf("duplicate action id %q", a.ID)
	}

	stored := *a
	if err := q.persist(&stored); err != nil {
		q.mutex.Unlock()
		return err
	}
	q.actions[stored.ID] = &stored
	notify, count := q.snapshotSubscribers()
	q.mutex.Unlock()

	log.WithField("action", stored.ID).Debugf("enqueued %s action", stored.Kind)
	fire(notify, count)
	return nil
}

// Get returns a copy of the action with the given id.
func (q *Queue) Get(id string) (*Action, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	a, ok := q.actions[id]
	if !ok {
		return nil, wire.NewError(wire.NotFound, "unknown action id "+id)
	}
	cp := *a
	return &cp, nil
}

// Pending returns copies of all still-pending actions, oldest first. This
// is exactly the set an approval surface must show.
func (q *Queue) Pending() []*Action {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	var pending []*Action
	for _, a := range q.actions {
		if a.Status == StatusPending {
			cp := *a
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending
}

// PendingCount returns the number of still-pending actions, i.e. the badge
// counter's value.
func (q *Queue) PendingCount() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.pendingCount()
}

// Approve applies the approved terminal transition. If the action is
// already terminal, Approve is a no-op and returns the committed action with
// applied=false; a transition race is expected, not exceptional.
func (q *Queue) Approve(id string, result json.RawMessage) (a *Action, applied bool, err error) {
	return q.resolve(id, StatusApproved, result, "")
}

// Reject applies the rejected terminal transition, analogous to Approve.
func (q *Queue) Reject(id, reason string) (a *Action, applied bool, err error) {
	return q.resolve(id, StatusRejected, nil, reason)
}

// Expire transitions every still-pending action created before the cutoff
// to expired and returns the actions it transitioned.
func (q *Queue) Expire(cutoff time.Time) ([]*Action, error) {
	q.mutex.Lock()

	var expired []*Action
	for _, a := range q.actions {
		if a.Status != StatusPending || !a.CreatedAt.Before(cutoff) {
			continue
		}
		updated := *a
		updated.Status = StatusExpired
		updated.Error = wire.NewError(wire.Expired, "approval window elapsed").Error()
		updated.ResolvedAt = time.Now()
		if err := q.persist(&updated); err != nil {
			q.mutex.Unlock()
			return expired, err
		}
		q.actions[updated.ID] = &updated
		cp := updated
		expired = append(expired, &cp)
	}

	var notify []func(int)
	var count int
	if len(expired) > 0 {
		notify, count = q.snapshotSubscribers()
	}
	q.mutex.Unlock()

	fire(notify, count)
	return expired, nil
}

// Collect garbage-collects terminal actions resolved before the cutoff and
// returns how many were removed. Pending actions are never collected.
func (q *Queue) Collect(cutoff time.Time) (int, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	removed := 0
	for id, a := range q.actions {
		if !a.Status.Terminal() || !a.ResolvedAt.Before(cutoff) {
			continue
		}
		if err := q.db.Delete(id); err != nil {
			return removed, errors.WithMessagef(err, "deleting action %q", id)
		}
		delete(q.actions, id)
		removed++
	}
	return removed, nil
}

// resolve applies a terminal transition. The first terminal transition
// wins; later attempts are reported as not applied.
func (q *Queue) resolve(id string, status Status, result json.RawMessage, reason string) (*Action, bool, error) {
	q.mutex.Lock()

	a, ok := q.actions[id]
	if !ok {
		q.mutex.Unlock()
		return nil, false, wire.NewError(wire.NotFound, "unknown action id "+id)
	}
	if a.Status != StatusPending {
		cp := *a
		q.mutex.Unlock()
		return &cp, false, nil
	}

	updated := *a
	updated.Status = status
	updated.ResolvedAt = time.Now()
	switch status {
	case StatusApproved:
		updated.Result = result
	case StatusRejected:
		updated.Error = wire.NewError(wire.UserRejected, reason).Error()
	}

	// Durable before committed: if persisting fails, the action stays
	// pending and the transition can be retried.
	if err := q.persist(&updated); err != nil {
		q.mutex.Unlock()
		return nil, false, err
	}
	q.actions[id] = &updated
	cp := updated
	notify, count := q.snapshotSubscribers()
	q.mutex.Unlock()

	log.WithField("action", id).Debugf("action resolved as %s", status)
	fire(notify, count)
	return &cp, true, nil
}

// persist must be called with the mutex held.
func (q *Queue) persist(a *Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return errors.WithMessage(err, "marshaling action")
	}
	return errors.WithMessagef(q.db.PutBytes(a.ID, data), "persisting action %q", a.ID)
}

// pendingCount must be called with the mutex held.
func (q *Queue) pendingCount() int {
	count := 0
	for _, a := range q.actions {
		if a.Status == StatusPending {
			count++
		}
	}
	return count
}

// snapshotSubscribers must be called with the mutex held. The callbacks are
// invoked after the mutex is released.
func (q *Queue) snapshotSubscribers() ([]func(int), int) {
	subs := make([]func(int), len(q.onChanged))
	copy(subs, q.onChanged)
	return subs, q.pendingCount()
}

func fire(subs []func(int), count int) {
	for _, fn := range subs {
		fn(count)
	}
}
