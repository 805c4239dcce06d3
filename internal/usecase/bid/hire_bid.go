package bid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/event"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/goroutine"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

const (
	hiredMessage    = "Исполнитель успешно выбран"
	dispatchTimeout = 5 * time.Second
)

type HireResult struct {
	Message string
	Bid     *entity.BidDetails
	// Rejected - сколько конкурирующих откликов отклонено в той же транзакции.
	Rejected int64
}

type HireBidUseCase struct {
	txManager  repository.TxManager
	bidRepo    repository.BidRepository
	dispatcher event.Dispatcher
	async      func(fn func())
}

func NewHireBidUseCase(txManager repository.TxManager, bidRepo repository.BidRepository, dispatcher event.Dispatcher) *HireBidUseCase {
	if dispatcher == nil {
		dispatcher = event.Nop
	}
	return &HireBidUseCase{
		txManager:  txManager,
		bidRepo:    bidRepo,
		dispatcher: dispatcher,
		async:      goroutine.SafeGo,
	}
}

// WithAsync подменяет запуск фоновой доставки уведомления (для тестов).
func (uc *HireBidUseCase) WithAsync(async func(fn func())) *HireBidUseCase {
	uc.async = async
	return uc
}

// Execute выбирает исполнителя. Все проверки выполняются внутри транзакции
// по её собственному снимку, заказ блокируется раньше отклика.
func (uc *HireBidUseCase) Execute(ctx context.Context, bidID, callerID uuid.UUID) (*HireResult, error) {
	var (
		hired    *entity.Bid
		gig      *entity.Gig
		rejected int64
	)

	err := uc.txManager.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		bid, err := repos.Bids().FindByID(ctx, bidID)
		if err != nil {
			return err
		}

		g, err := repos.Gigs().LockByID(ctx, bid.GigID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.ErrBidNotFound
			}
			return err
		}

		if !g.IsOwnedBy(callerID) {
			return apperror.ErrNotOwner
		}

		if !g.IsOpen() {
			return apperror.ErrAlreadyAssigned
		}

		// Перечитываем отклик под блокировкой: статус мог измениться до блокировки заказа.
		bid, err = repos.Bids().LockByID(ctx, bidID)
		if err != nil {
			return err
		}

		if err := bid.Hire(); err != nil {
			return err
		}
		if err := g.AssignTo(bid.BidderID); err != nil {
			return err
		}

		if err := repos.Gigs().MarkAssigned(ctx, g); err != nil {
			return err
		}
		if err := repos.Bids().MarkHired(ctx, bid); err != nil {
			return err
		}

		rejected, err = repos.Bids().RejectPendingExcept(ctx, g.ID, bid.ID)
		if err != nil {
			return err
		}

		hired, gig = bid, g
		return nil
	})
	if err != nil {
		wrapped := apperror.Internal(err, "не удалось выбрать исполнителя")
		if apperror.IsInternal(wrapped) {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"bid_id":    bidID,
				"caller_id": callerID,
			}).Error("bid: транзакция найма не выполнена")
		}
		return nil, wrapped
	}

	logger.Log.WithFields(logrus.Fields{
		"bid_id":   hired.ID,
		"gig_id":   gig.ID,
		"bidder":   hired.BidderID,
		"rejected": rejected,
	}).Info("bid: исполнитель выбран")

	uc.notifyHired(gig, hired)

	details, err := uc.bidRepo.FindDetailsByID(ctx, hired.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("bid_id", hired.ID).Warn("bid: не удалось загрузить отклик после найма")
		details = &entity.BidDetails{Bid: *hired, Gig: gig.Summary()}
	}

	return &HireResult{
		Message:  hiredMessage,
		Bid:      details,
		Rejected: rejected,
	}, nil
}

// notifyHired отправляет событие вне транзакции и не ждёт доставки.
// Ошибка доставки не влияет на результат найма.
func (uc *HireBidUseCase) notifyHired(gig *entity.Gig, bid *entity.Bid) {
	ev := event.NewHired(gig.ID, gig.Title, bid.ID)
	recipient := bid.BidderID

	uc.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := uc.dispatcher.Deliver(ctx, recipient, ev); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"recipient": recipient,
				"bid_id":    bid.ID,
			}).Warn("bid: уведомление о найме не доставлено")
		}
	})
}
