package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buslane/internal/holds"
	"buslane/internal/notifications"
	"buslane/internal/shared/config"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

type ConfirmParams struct {
	PaymentID         uuid.UUID
	ExternalReference string
	ActorID           uuid.UUID
	IsOperator        bool
}

type Service interface {
	// CreatePayment opens a payment attempt for a pending hold. For the
	// gateway method it creates a provider intent keyed by the hold id, so
	// retries return the same intent instead of double-charging. An
	// existing active payment with the same method is returned as is.
	CreatePayment(ctx context.Context, holdID, customerID uuid.UUID, method Method) (*PaymentResponse, error)

	// ConfirmPayment captures the payment and settles the hold. Replaying
	// a confirm for an already-settled payment with the same external
	// reference succeeds without side effects. If capture lands after the
	// hold closed, a compensation record is written and ErrSettlementRace
	// returned; the customer is never given seats that expired away.
	ConfirmPayment(ctx context.Context, params ConfirmParams) (*PaymentResponse, error)

	// CancelPayment abandons an active payment attempt. The hold stays
	// pending until its own deadline.
	CancelPayment(ctx context.Context, paymentID, customerID uuid.UUID) (*PaymentResponse, error)

	GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error)
	GetPaymentByHold(ctx context.Context, holdID uuid.UUID) (*PaymentResponse, error)

	ListPendingCompensations(ctx context.Context) ([]Compensation, error)
	ResolveCompensation(ctx context.Context, compensationID, operatorID uuid.UUID) error
}

type service struct {
	repo        Repository
	gateway     Gateway
	holdService holds.Service
	producer    notifications.Producer
	cfg         *config.ReservationConfig
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(repo Repository, gateway Gateway, holdService holds.Service, producer notifications.Producer, cfg *config.ReservationConfig, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		gateway:     gateway,
		holdService: holdService,
		producer:    producer,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
	}
}

func (s *service) CreatePayment(ctx context.Context, holdID, customerID uuid.UUID, method Method) (*PaymentResponse, error) {
	hold, err := s.holdService.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if customerID != uuid.Nil && hold.CustomerID != customerID {
		return nil, holds.ErrNotHoldOwner
	}
	if err := s.requirePending(ctx, hold); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetActiveByHold(ctx, holdID); err == nil {
		if existing.Method == method {
			resp := existing.ToResponse()
			return &resp, nil
		}
		// Switching methods abandons the previous attempt.
		existing.Status = StatusCancelled
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	payment := &Payment{
		ID:         uuid.New(),
		HoldID:     holdID,
		CustomerID: hold.CustomerID,
		Method:     method,
		Amount:     hold.TotalPrice(),
		Currency:   s.cfg.Currency,
	}

	var clientSecret string
	if method.IsManual() {
		payment.Status = StatusAwaitingSettlement
	} else {
		intent, err := s.gateway.CreateIntent(ctx, IntentRequest{
			HoldID:   holdID,
			Amount:   payment.Amount,
			Currency: payment.Currency,
		})
		if err != nil {
			return nil, err
		}
		payment.Status = StatusCreated
		payment.ExternalReference = &intent.Reference
		clientSecret = intent.ClientSecret
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		"payment_id", payment.ID,
		"hold_id", holdID,
		"method", method,
		"amount", payment.Amount)

	resp := payment.ToResponse()
	resp.ClientSecret = clientSecret
	return &resp, nil
}

func (s *service) ConfirmPayment(ctx context.Context, params ConfirmParams) (*PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, params.PaymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status == StatusSettled {
		if params.ExternalReference == "" ||
			(payment.ExternalReference != nil && *payment.ExternalReference == params.ExternalReference) {
			resp := payment.ToResponse()
			return &resp, nil
		}
		return nil, ErrAlreadySettled
	}
	if payment.Status.IsTerminal() {
		return nil, ErrPaymentClosed
	}

	if payment.Method.IsManual() {
		if !params.IsOperator {
			return nil, ErrOperatorRequired
		}
		if params.ExternalReference == "" {
			return nil, ErrMissingReference
		}
	} else if !params.IsOperator && payment.CustomerID != params.ActorID {
		return nil, ErrNotPaymentCustomer
	}

	// Check the hold before capturing so an already-dead hold never
	// charges the customer.
	hold, err := s.holdService.GetHold(ctx, payment.HoldID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, hold); err != nil {
		s.fail(ctx, payment, err.Error())
		return nil, err
	}

	reference := params.ExternalReference
	if payment.Method.IsManual() {
		// The operator's statement is the capture for cash and transfers.
	} else {
		if reference == "" && payment.ExternalReference != nil {
			reference = *payment.ExternalReference
		}
		intent, err := s.gateway.ConfirmIntent(ctx, reference)
		if err != nil {
			if errors.Is(err, ErrPaymentRejected) {
				s.fail(ctx, payment, "declined by gateway")
				return nil, ErrPaymentRejected
			}
			// Unknown outcome: leave the payment active for retry.
			return nil, err
		}
		if intent.Status != IntentStatusApproved {
			s.fail(ctx, payment, "declined by gateway")
			return nil, ErrPaymentRejected
		}
	}

	// Money is captured. Settlement must now either assign the seats or
	// queue a refund.
	if _, err := s.holdService.Settle(ctx, payment.HoldID); err != nil {
		if errors.Is(err, holds.ErrHoldExpired) ||
			errors.Is(err, holds.ErrHoldCancelled) ||
			errors.Is(err, holds.ErrHoldConfirmed) {
			s.compensate(ctx, payment, reference, err)
			return nil, fmt.Errorf("%w: %s", ErrSettlementRace, err)
		}
		return nil, err
	}

	now := s.now()
	payment.Status = StatusSettled
	payment.SettledAt = &now
	if reference != "" {
		payment.ExternalReference = &reference
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	externalRef := ""
	if payment.ExternalReference != nil {
		externalRef = *payment.ExternalReference
	}
	s.logger.LogReservationConfirmed(ctx, payment.HoldID.String(), payment.ID.String(), externalRef)

	resp := payment.ToResponse()
	return &resp, nil
}

func (s *service) CancelPayment(ctx context.Context, paymentID, customerID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if customerID != uuid.Nil && payment.CustomerID != customerID {
		return nil, ErrNotPaymentCustomer
	}

	switch payment.Status {
	case StatusCancelled:
		resp := payment.ToResponse()
		return &resp, nil
	case StatusSettled:
		return nil, ErrAlreadySettled
	case StatusFailed:
		return nil, ErrPaymentClosed
	}

	payment.Status = StatusCancelled
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment cancelled", "payment_id", payment.ID, "hold_id", payment.HoldID)
	resp := payment.ToResponse()
	return &resp, nil
}

func (s *service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	resp := payment.ToResponse()
	return &resp, nil
}

func (s *service) GetPaymentByHold(ctx context.Context, holdID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.repo.GetLatestByHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	resp := payment.ToResponse()
	return &resp, nil
}

func (s *service) ListPendingCompensations(ctx context.Context) ([]Compensation, error) {
	return s.repo.ListPendingCompensations(ctx)
}

func (s *service) ResolveCompensation(ctx context.Context, compensationID, operatorID uuid.UUID) error {
	if err := s.repo.ResolveCompensation(ctx, compensationID, operatorID, s.now()); err != nil {
		return err
	}
	s.logger.Info("compensation resolved", "compensation_id", compensationID, "operator_id", operatorID)
	return nil
}

// requirePending rejects holds that are closed or past their deadline.
// An overdue pending hold is expired on the spot rather than waiting for
// the sweeper.
func (s *service) requirePending(ctx context.Context, hold *holds.Hold) error {
	if !hold.IsPending() {
		return holds.TerminalError(hold.Status)
	}
	if hold.IsExpiredAt(s.now()) {
		if err := s.holdService.Expire(ctx, hold.ID); err != nil {
			s.logger.Warn("failed to expire overdue hold", "error", err, "hold_id", hold.ID)
		}
		return holds.ErrHoldExpired
	}
	return nil
}

func (s *service) fail(ctx context.Context, payment *Payment, reason string) {
	payment.Status = StatusFailed
	payment.FailureReason = &reason
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("failed to record payment failure", "error", err, "payment_id", payment.ID)
	}
}

// compensate records a captured-but-unsettleable payment for refund.
func (s *service) compensate(ctx context.Context, payment *Payment, reference string, cause error) {
	reason := fmt.Sprintf("captured after hold closed: %s", cause)
	s.fail(ctx, payment, reason)

	comp := &Compensation{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		HoldID:    payment.HoldID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Reason:    reason,
		Status:    CompensationPending,
	}
	if err := s.repo.CreateCompensation(ctx, comp); err != nil {
		s.logger.Error("failed to record compensation", "error", err, "payment_id", payment.ID)
	}

	if s.producer != nil {
		evt := notifications.CompensationEvent{
			PaymentID:         payment.ID.String(),
			HoldID:            payment.HoldID.String(),
			CustomerID:        payment.CustomerID.String(),
			ExternalReference: reference,
			Amount:            payment.Amount,
			Currency:          payment.Currency,
			Reason:            reason,
			OccurredAt:        s.now(),
		}
		if err := s.producer.PublishCompensation(ctx, evt); err != nil {
			s.logger.Warn("failed to publish compensation event", "error", err, "payment_id", payment.ID)
		}
	}

	s.logger.LogSettlementRace(ctx, payment.HoldID.String(), payment.ID.String(), reference)
}
