package bid

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/event"
	"github.com/ignatzorin/gigflow/internal/infrastructure/memory"
	"github.com/ignatzorin/gigflow/internal/logger"
)

func init() {
	logger.Silence()
}

const validMessage = "Сделаю качественно и в срок"

// recordingDispatcher запоминает доставленные события.
type recordingDispatcher struct {
	mu        sync.Mutex
	delivered []delivery
	err       error
}

type delivery struct {
	recipient uuid.UUID
	event     event.Event
}

func (d *recordingDispatcher) Deliver(ctx context.Context, recipient uuid.UUID, ev event.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, delivery{recipient: recipient, event: ev})
	return d.err
}

func (d *recordingDispatcher) snapshot() []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]delivery(nil), d.delivered...)
}

func syncAsync(fn func()) { fn() }

type testEnv struct {
	store      *memory.Store
	dispatcher *recordingDispatcher
	submit     *SubmitBidUseCase
	hire       *HireBidUseCase
	listGig    *ListGigBidsUseCase
	listMine   *ListMyBidsUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	dispatcher := &recordingDispatcher{}
	return &testEnv{
		store:      store,
		dispatcher: dispatcher,
		submit:     NewSubmitBidUseCase(store.Bids(), store.Gigs()),
		hire:       NewHireBidUseCase(store, store.Bids(), dispatcher).WithAsync(syncAsync),
		listGig:    NewListGigBidsUseCase(store.Bids(), store.Gigs()),
		listMine:   NewListMyBidsUseCase(store.Bids()),
	}
}

func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := entity.NewUser(name, uuid.NewString()+"@example.com", "hash")
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u.ID
}

func (e *testEnv) gig(t *testing.T, ownerID uuid.UUID) *entity.Gig {
	t.Helper()
	g, err := entity.NewGig(ownerID, "Дизайн логотипа", "Нужен логотип для небольшой кофейни у дома", 5000)
	require.NoError(t, err)
	require.NoError(t, e.store.Gigs().Create(context.Background(), g))
	return g
}

func (e *testEnv) bid(t *testing.T, gigID, bidderID uuid.UUID, price int64) *entity.BidDetails {
	t.Helper()
	b, err := e.submit.Execute(context.Background(), SubmitBidInput{
		GigID: gigID, BidderID: bidderID, Message: validMessage, Price: price,
	})
	require.NoError(t, err)
	return b
}
