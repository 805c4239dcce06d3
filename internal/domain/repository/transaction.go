package repository

import "context"

// TxRepositories - репозитории, привязанные к одной транзакции.
type TxRepositories interface {
	Gigs() GigRepository
	Bids() BidRepository
}

// TxManager выполняет fn в одной ACID-транзакции: либо фиксируются все
// записи, либо ни одной. Ошибка из fn откатывает транзакцию и возвращается как есть.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
