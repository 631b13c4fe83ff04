package library

import (
	"fmt"
	"sync"
)

// Directory owns the registered members. Its ID counter is independent of
// the catalog's.
type Directory struct {
	mu      sync.RWMutex
	members []Member
	byID    map[int64]int
	nextID  int64
}

func NewDirectory() *Directory {
	return &Directory{
		byID:   make(map[int64]int),
		nextID: 1,
	}
}

// RegisterMember stores a new member under the next sequential ID.
func (d *Directory) RegisterMember(name, phone string) Member {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := Member{ID: d.nextID, Name: name, Phone: phone}
	d.nextID++
	d.byID[m.ID] = len(d.members)
	d.members = append(d.members, m)
	return m
}

func (d *Directory) FindByID(id int64) (Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.byID[id]
	if !ok {
		return Member{}, fmt.Errorf("member %d: %w", id, ErrMemberNotFound)
	}
	return d.members[i], nil
}

// ListAll returns the members in registration order.
func (d *Directory) ListAll() []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Member, len(d.members))
	copy(out, d.members)
	return out
}
