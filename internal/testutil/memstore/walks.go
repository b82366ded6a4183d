package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
)

type walkRow = domain.Walk

// Walks репозиторий прогулок в памяти
type Walks struct{ s *Store }

// Walks возвращает репозиторий прогулок
func (s *Store) Walks() *Walks { return &Walks{s: s} }

// Create сохраняет прогулку
func (r *Walks) Create(_ context.Context, walk *domain.Walk) (*domain.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	walk.ID = r.s.id()
	walk.Version = 1
	walk.CreatedAt = r.s.now()
	walk.UpdatedAt = walk.CreatedAt
	r.s.walks[walk.ID] = *walk
	return walk, nil
}

// GetByID возвращает копию прогулки
func (r *Walks) GetByID(_ context.Context, id int64) (*domain.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.walks[id]
	if !ok {
		return nil, walkRepo.ErrWalkNotFound
	}
	return &row, nil
}

// ListByStatus возвращает прогулки в статусах
func (r *Walks) ListByStatus(_ context.Context, statuses []domain.WalkStatus) ([]*domain.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Walk, 0)
	for _, row := range r.s.walks {
		for _, st := range statuses {
			if row.Status == st {
				w := row
				result = append(result, &w)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

// UpdateCapacity сохраняет счётчики мест при совпадении версии
func (r *Walks) UpdateCapacity(ctx context.Context, walk *domain.Walk) error {
	return r.cas(walk, func(row *domain.Walk) {
		row.MaxPlaces = walk.MaxPlaces
		row.ReservedPlaces = walk.ReservedPlaces
		row.AvailablePlaces = walk.AvailablePlaces
	})
}

// ReservePlaces резервирует места, если прогулка открыта и мест хватает
func (r *Walks) ReservePlaces(_ context.Context, id int64, count int) (*domain.Walk, error) {
	return r.shift(id, func(row *domain.Walk) error { return row.Reserve(count) })
}

// ReleasePlaces возвращает места, если столько зарезервировано
func (r *Walks) ReleasePlaces(_ context.Context, id int64, count int) (*domain.Walk, error) {
	return r.shift(id, func(row *domain.Walk) error { return row.Release(count) })
}

func (r *Walks) shift(id int64, change func(row *domain.Walk) error) (*domain.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.walks[id]
	if !ok || change(&row) != nil {
		return nil, fmt.Errorf("%w: walk id=%d", walkRepo.ErrConditionNotMet, id)
	}
	row.Version++
	row.UpdatedAt = r.s.now()
	r.s.walks[id] = row
	return &row, nil
}

// UpdateStatus сохраняет статус при совпадении версии
func (r *Walks) UpdateStatus(ctx context.Context, walk *domain.Walk) error {
	return r.cas(walk, func(row *domain.Walk) {
		row.Status = walk.Status
	})
}

func (r *Walks) cas(walk *domain.Walk, apply func(row *domain.Walk)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.walks[walk.ID]
	if !ok || row.Version != walk.Version {
		return fmt.Errorf("%w: walk id=%d", walkRepo.ErrVersionConflict, walk.ID)
	}
	apply(&row)
	row.Version++
	row.UpdatedAt = r.s.now()
	r.s.walks[walk.ID] = row
	walk.Version = row.Version
	return nil
}

// PutWalk сохраняет прогулку как есть, для подготовки данных в тестах
func (s *Store) PutWalk(walk domain.Walk) *domain.Walk {
	s.mu.Lock()
	defer s.mu.Unlock()

	if walk.ID == 0 {
		walk.ID = s.id()
	}
	if walk.Version == 0 {
		walk.Version = 1
	}
	s.walks[walk.ID] = walk
	return &walk
}

// Walk возвращает текущее состояние прогулки
func (s *Store) Walk(id int64) domain.Walk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walks[id]
}
