package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"minato-cat-support/internal/domain/roster"
)

type rosterRepo struct {
	mu      sync.RWMutex
	cats    map[string]roster.Cat
	points  map[string]roster.FeedingPoint
	zones   map[string]roster.Zone
	members map[string]roster.Member
}

func NewRosterRepo() roster.Repository {
	return &rosterRepo{
		cats:    make(map[string]roster.Cat),
		points:  make(map[string]roster.FeedingPoint),
		zones:   make(map[string]roster.Zone),
		members: make(map[string]roster.Member),
	}
}

func (r *rosterRepo) ListCats(ctx context.Context) ([]roster.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Cat, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, cloneCat(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *rosterRepo) ListPoints(ctx context.Context) ([]roster.FeedingPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.FeedingPoint, 0, len(r.points))
	for _, p := range r.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *rosterRepo) ListZones(ctx context.Context) ([]roster.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Zone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *rosterRepo) ListMembers(ctx context.Context) ([]roster.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *rosterRepo) GetCat(ctx context.Context, id string) (roster.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cats[id]
	if !ok {
		return roster.Cat{}, roster.ErrNotFound
	}
	return cloneCat(c), nil
}

func (r *rosterRepo) GetPoint(ctx context.Context, id string) (roster.FeedingPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.points[id]
	if !ok {
		return roster.FeedingPoint{}, roster.ErrNotFound
	}
	return p, nil
}

func (r *rosterRepo) SaveCat(ctx context.Context, c roster.Cat, isNew bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkSave(c.ID, isNew, hasKey(r.cats, c.ID)); err != nil {
		return err
	}
	r.cats[c.ID] = cloneCat(c)
	return nil
}

func (r *rosterRepo) SavePoint(ctx context.Context, p roster.FeedingPoint, isNew bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkSave(p.ID, isNew, hasKey(r.points, p.ID)); err != nil {
		return err
	}
	r.points[p.ID] = p
	return nil
}

func (r *rosterRepo) SaveZone(ctx context.Context, z roster.Zone, isNew bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkSave(z.ID, isNew, hasKey(r.zones, z.ID)); err != nil {
		return err
	}
	r.zones[z.ID] = z
	return nil
}

func (r *rosterRepo) SaveMember(ctx context.Context, m roster.Member, isNew bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkSave(m.ID, isNew, hasKey(r.members, m.ID)); err != nil {
		return err
	}
	r.members[m.ID] = m
	return nil
}

// checkSave: isNew exige que no exista; update exige que exista.
func checkSave(id string, isNew, exists bool) error {
	if id == "" {
		return errors.New("id required")
	}
	if isNew && exists {
		return roster.ErrAlreadyExists
	}
	if !isNew && !exists {
		return roster.ErrNotFound
	}
	return nil
}

func hasKey[V any](m map[string]V, id string) bool {
	_, ok := m[id]
	return ok
}

func cloneCat(c roster.Cat) roster.Cat {
	if c.SubPointIDs != nil {
		c.SubPointIDs = append([]string(nil), c.SubPointIDs...)
	}
	return c
}
