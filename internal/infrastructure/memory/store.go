// Package memory - хранилище в памяти процесса с тем же контрактом, что и
// Postgres: уникальность (gig, bidder) и атомарные транзакции. Используется
// в режиме STORAGE_DRIVER=memory и в тестах движка.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
)

type bidKey struct {
	gigID    uuid.UUID
	bidderID uuid.UUID
}

// state хранит значения, а не указатели, чтобы clone давал независимый снимок.
type state struct {
	users   map[uuid.UUID]entity.User
	emails  map[string]uuid.UUID
	gigs    map[uuid.UUID]entity.Gig
	bids    map[uuid.UUID]entity.Bid
	bidKeys map[bidKey]uuid.UUID
}

func newState() *state {
	return &state{
		users:   make(map[uuid.UUID]entity.User),
		emails:  make(map[string]uuid.UUID),
		gigs:    make(map[uuid.UUID]entity.Gig),
		bids:    make(map[uuid.UUID]entity.Bid),
		bidKeys: make(map[bidKey]uuid.UUID),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.emails {
		cp.emails[k] = v
	}
	for k, v := range s.gigs {
		if v.AssignedTo != nil {
			id := *v.AssignedTo
			v.AssignedTo = &id
		}
		cp.gigs[k] = v
	}
	for k, v := range s.bids {
		cp.bids[k] = v
	}
	for k, v := range s.bidKeys {
		cp.bidKeys[k] = v
	}
	return cp
}

// Store - корневой объект хранилища. Все операции сериализуются одним мьютексом;
// транзакция работает над копией состояния и подменяет его при успехе.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// run выполняет fn над актуальным состоянием под блокировкой.
func (s *Store) run(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Gigs() repository.GigRepository   { return &GigRepository{run: s.run} }
func (s *Store) Bids() repository.BidRepository   { return &BidRepository{run: s.run} }
func (s *Store) Users() repository.UserRepository { return &UserRepository{run: s.run} }

// WithinTx даёт сериализуемую изоляцию: конкурирующие транзакции выполняются
// по очереди, и каждая видит результат предыдущей.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.data.clone()
	onSnapshot := func(f func(st *state) error) error { return f(snapshot) }

	if err := fn(ctx, &txRepositories{run: onSnapshot}); err != nil {
		return err
	}

	s.data = snapshot
	return nil
}

type txRepositories struct {
	run func(func(st *state) error) error
}

func (t *txRepositories) Gigs() repository.GigRepository { return &GigRepository{run: t.run} }
func (t *txRepositories) Bids() repository.BidRepository { return &BidRepository{run: t.run} }

func userSummary(st *state, id uuid.UUID) *entity.UserSummary {
	u, ok := st.users[id]
	if !ok {
		return nil
	}
	return u.Summary()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
