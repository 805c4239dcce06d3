package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const TypeHired = "hired"

// Event - сообщение, адресованное одному пользователю.
type Event interface {
	Type() string
}

// Hired отправляется исполнителю после фиксации найма.
type Hired struct {
	Message  string    `json:"message"`
	GigID    uuid.UUID `json:"gigId"`
	GigTitle string    `json:"gigTitle"`
	BidID    uuid.UUID `json:"bidId"`
}

func (Hired) Type() string { return TypeHired }

func NewHired(gigID uuid.UUID, gigTitle string, bidID uuid.UUID) Hired {
	return Hired{
		Message:  fmt.Sprintf("Вас выбрали исполнителем заказа «%s»!", gigTitle),
		GigID:    gigID,
		GigTitle: gigTitle,
		BidID:    bidID,
	}
}

// Dispatcher доставляет событие в канал пользователя по принципу best-effort.
// Отсутствие подключения получателя ошибкой не является.
type Dispatcher interface {
	Deliver(ctx context.Context, recipient uuid.UUID, ev Event) error
}

// DispatcherFunc позволяет использовать функцию как Dispatcher.
type DispatcherFunc func(ctx context.Context, recipient uuid.UUID, ev Event) error

func (f DispatcherFunc) Deliver(ctx context.Context, recipient uuid.UUID, ev Event) error {
	return f(ctx, recipient, ev)
}

// Nop отбрасывает события.
var Nop Dispatcher = DispatcherFunc(func(context.Context, uuid.UUID, Event) error { return nil })
