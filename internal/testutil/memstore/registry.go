package memstore

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	routeRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/route"
)

type clientRow = domain.Client

type routeRow = domain.Route

// Clients реестр клиентов в памяти
type Clients struct{ s *Store }

// Clients возвращает реестр клиентов
func (s *Store) Clients() *Clients { return &Clients{s: s} }

// Upsert создает клиента или обновляет существующего с тем же телефоном
func (r *Clients) Upsert(_ context.Context, client *domain.Client) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.clients {
		if c.Phone == client.Phone {
			c.Name = client.Name
			if client.Email != nil {
				c.Email = client.Email
			}
			r.s.clients[id] = c
			client.ID = id
			client.CreatedAt = c.CreatedAt
			return client, nil
		}
	}

	client.ID = r.s.id()
	client.CreatedAt = r.s.now()
	r.s.clients[client.ID] = *client
	return client, nil
}

// Routes реестр маршрутов в памяти
type Routes struct{ s *Store }

// Routes возвращает реестр маршрутов
func (s *Store) Routes() *Routes { return &Routes{s: s} }

// GetByID возвращает маршрут
func (r *Routes) GetByID(_ context.Context, id int64) (*domain.Route, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	route, ok := r.s.routes[id]
	if !ok {
		return nil, routeRepo.ErrRouteNotFound
	}
	return &route, nil
}

// PutRoute сохраняет маршрут
func (s *Store) PutRoute(route domain.Route) *domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	if route.ID == 0 {
		route.ID = s.id()
	}
	s.routes[route.ID] = route
	return &route
}

// PutClient сохраняет клиента
func (s *Store) PutClient(client domain.Client) *domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.ID == 0 {
		client.ID = s.id()
	}
	s.clients[client.ID] = client
	return &client
}
