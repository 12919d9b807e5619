package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
	"github.com/mobiwallet/ledger/internal/infrastructure/metrics"
)

// OrchestratorConfig tunes flow behavior.
type OrchestratorConfig struct {
	// SettlementDelay is how long a flow waits before the settlement
	// outcome is requested from the gateway.
	SettlementDelay time.Duration
	// SettlementTimeout bounds a single settlement attempt; expiry is
	// treated as a settlement failure.
	SettlementTimeout time.Duration
	FeePolicy         domain.FeePolicy
}

// Orchestrator ties the journal and the ledger writer into the four money
// movement flows. Every flow writes a journal record, applies balance
// mutations through the writer, suspends until settlement, and finishes
// with exactly one terminal transition. Failures after funds moved go
// through a single compensating-refund path.
type Orchestrator struct {
	writer    *LedgerWriter
	journal   *Journal
	gateway   Gateway
	scheduler Scheduler
	cfg       OrchestratorConfig
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	// inflight tracks journal records owned by this orchestrator that have
	// not reached settlement yet. Only the owning orchestrator may
	// transition them.
	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	cancelTimer func()
	settling    bool
	// refunded marks a cancel whose reservation came back but whose
	// cancelled-status write failed; a retried Cancel must not refund twice.
	refunded bool
}

// NewOrchestrator creates a new Orchestrator. metrics may be nil.
func NewOrchestrator(
	writer *LedgerWriter,
	journal *Journal,
	gateway Gateway,
	scheduler Scheduler,
	cfg OrchestratorConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	if cfg.SettlementDelay <= 0 {
		cfg.SettlementDelay = DefaultSettlementDelay
	}
	if cfg.SettlementTimeout <= 0 {
		cfg.SettlementTimeout = DefaultSettlementTimeout
	}
	if cfg.FeePolicy.WithdrawalRate.IsZero() {
		cfg.FeePolicy = domain.DefaultFeePolicy()
	}

	return &Orchestrator{
		writer:    writer,
		journal:   journal,
		gateway:   gateway,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		inflight:  make(map[string]*flight),
	}
}

// DepositInput starts a deposit flow.
type DepositInput struct {
	OwnerID     string
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Description string
	Metadata    map[string]any
}

// StartDeposit journals a pending deposit and schedules settlement. Funds
// are credited only after the gateway confirms, so no compensation is ever
// needed for deposits.
func (o *Orchestrator) StartDeposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	if err := o.validateFlow(domain.KindDeposit, input.OwnerID, input.Currency, input.Amount, input.Fee, input.Metadata); err != nil {
		return nil, err
	}

	tx, err := o.journal.Create(ctx, CreateTransactionInput{
		OwnerID:     input.OwnerID,
		Kind:        domain.KindDeposit,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Fee:         input.Fee,
		Description: input.Description,
		Metadata:    input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	o.countStart(domain.KindDeposit)
	o.schedule(tx)

	return tx, nil
}

// WithdrawalInput starts a withdrawal flow.
type WithdrawalInput struct {
	OwnerID     string
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Description string
	// Destination carries the payout target (mobile money number, bank
	// details); stored on the journal record.
	Destination map[string]any
}

// StartWithdrawal reserves amount+fee up front by debiting the wallet, then
// journals the withdrawal and schedules settlement. An insufficient balance
// fails synchronously with no journal record and no funds moved.
func (o *Orchestrator) StartWithdrawal(ctx context.Context, input WithdrawalInput) (*domain.Transaction, error) {
	if err := o.validateFlow(domain.KindWithdrawal, input.OwnerID, input.Currency, input.Amount, input.Fee, input.Destination); err != nil {
		return nil, err
	}

	if !domain.IsCrypto(input.Currency) {
		if input.Amount.LessThan(o.cfg.FeePolicy.MinWithdrawal) {
			o.countReject(domain.KindWithdrawal, "below_minimum")
			return nil, fmt.Errorf("%w: minimum withdrawal is %s", domain.ErrAmountTooSmall, o.cfg.FeePolicy.MinWithdrawal)
		}
		if minFee := o.cfg.FeePolicy.WithdrawalFee(input.Amount); input.Fee.LessThan(minFee) {
			o.countReject(domain.KindWithdrawal, "fee_too_low")
			return nil, fmt.Errorf("%w: required fee is %s", domain.ErrFeeTooLow, minFee)
		}
	}

	metadata := map[string]any{}
	if input.Destination != nil {
		metadata[domain.MetaDestination] = input.Destination
	}

	return o.startDebitFirst(ctx, CreateTransactionInput{
		OwnerID:     input.OwnerID,
		Kind:        domain.KindWithdrawal,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Fee:         input.Fee,
		Description: input.Description,
		Metadata:    metadata,
	}, input.Currency, input.Amount.Add(input.Fee))
}

// TransferInput starts a transfer flow.
type TransferInput struct {
	OwnerID     string
	RecipientID string
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Description string
}

// StartTransfer debits the sender immediately and journals the transfer.
// The recipient is credited once, at settlement success, never before the
// sender's debit is confirmed applied.
func (o *Orchestrator) StartTransfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := o.validateFlow(domain.KindTransfer, input.OwnerID, input.Currency, input.Amount, input.Fee, nil); err != nil {
		return nil, err
	}
	if err := domain.ValidateOwnerID(input.RecipientID); err != nil {
		return nil, err
	}
	if input.RecipientID == input.OwnerID {
		return nil, domain.ErrSameOwner
	}

	return o.startDebitFirst(ctx, CreateTransactionInput{
		OwnerID:     input.OwnerID,
		Kind:        domain.KindTransfer,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Fee:         input.Fee,
		Description: input.Description,
		Metadata:    map[string]any{domain.MetaRecipientID: input.RecipientID},
	}, input.Currency, input.Amount.Add(input.Fee))
}

// TradeInput starts a crypto trade flow: sell one currency, buy another, on
// the same owner.
type TradeInput struct {
	OwnerID      string
	SellCurrency string
	BuyCurrency  string
	SellAmount   decimal.Decimal
	BuyAmount    decimal.Decimal
	Fee          decimal.Decimal
	Description  string
}

// StartTrade debits the sell leg immediately; the buy leg is credited at
// settlement success. Either both legs apply or neither: any failure after
// the sell debit refunds it before the transaction is marked failed.
func (o *Orchestrator) StartTrade(ctx context.Context, input TradeInput) (*domain.Transaction, error) {
	if err := domain.ValidateOwnerID(input.OwnerID); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.SellCurrency); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.BuyCurrency); err != nil {
		return nil, err
	}
	if input.SellCurrency == input.BuyCurrency {
		return nil, domain.ErrSameCurrency
	}
	if err := domain.ValidateAmount(input.SellAmount); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.BuyAmount); err != nil {
		return nil, err
	}
	if input.Fee.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	kind := domain.KindSellCrypto
	if domain.IsCrypto(input.BuyCurrency) {
		kind = domain.KindBuyCrypto
	}

	return o.startDebitFirst(ctx, CreateTransactionInput{
		OwnerID:     input.OwnerID,
		Kind:        kind,
		Currency:    input.BuyCurrency,
		Amount:      input.BuyAmount,
		Fee:         input.Fee,
		Description: input.Description,
		Metadata: map[string]any{
			domain.MetaSellCurrency: input.SellCurrency,
			domain.MetaSellAmount:   input.SellAmount.String(),
		},
	}, input.SellCurrency, input.SellAmount.Add(input.Fee))
}

// AirtimeInput starts an airtime purchase flow.
type AirtimeInput struct {
	OwnerID     string
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	PhoneNumber string
	Description string
}

// StartAirtime debits amount+fee up front and journals an airtime purchase.
func (o *Orchestrator) StartAirtime(ctx context.Context, input AirtimeInput) (*domain.Transaction, error) {
	if err := o.validateFlow(domain.KindAirtime, input.OwnerID, input.Currency, input.Amount, input.Fee, nil); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Airtime purchase for " + input.PhoneNumber
	}

	return o.startDebitFirst(ctx, CreateTransactionInput{
		OwnerID:     input.OwnerID,
		Kind:        domain.KindAirtime,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Fee:         input.Fee,
		Description: description,
		Metadata:    map[string]any{domain.MetaPhoneNumber: input.PhoneNumber},
	}, input.Currency, input.Amount.Add(input.Fee))
}

// startDebitFirst runs the shared reservation sequence: debit the payer,
// journal the intent, schedule settlement. debitCurrency/debitAmount name
// the reserved leg (for trades this differs from the journal currency).
func (o *Orchestrator) startDebitFirst(ctx context.Context, create CreateTransactionInput, debitCurrency string, debitAmount decimal.Decimal) (*domain.Transaction, error) {
	if _, err := o.writer.Debit(ctx, create.OwnerID, debitCurrency, debitAmount); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			o.countReject(create.Kind, "insufficient_funds")
		}
		return nil, err
	}

	tx, err := o.journal.Create(ctx, create)
	if err != nil {
		// The reservation already happened; put the money back before
		// surfacing the journal error.
		if _, cerr := o.writer.Credit(ctx, create.OwnerID, debitCurrency, debitAmount); cerr != nil {
			o.logger.Error().
				Err(cerr).
				Str("owner_id", create.OwnerID).
				Str("currency", debitCurrency).
				Str("amount", debitAmount.String()).
				Msg("refund after journal failure did not apply; manual reconciliation required")
			if o.metrics != nil {
				o.metrics.StuckTransactions.Inc()
			}
			return nil, fmt.Errorf("%w: journal create failed and refund did not apply: %v", domain.ErrStuckTransaction, err)
		}
		return nil, err
	}

	o.countStart(create.Kind)
	o.schedule(tx)

	return tx, nil
}

// GetTransaction retrieves a transaction by reference id.
func (o *Orchestrator) GetTransaction(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	return o.journal.Get(ctx, referenceID)
}

// ListTransactions returns an owner's transactions, newest first.
func (o *Orchestrator) ListTransactions(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	return o.journal.ListByOwner(ctx, ownerID, limit, offset)
}

// ListOverduePending returns pending transactions older than the full
// settlement window. Anything here either lost its settlement timer or is
// stuck after a failed compensation.
func (o *Orchestrator) ListOverduePending(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	cutoff := time.Now().UTC().Add(-(o.cfg.SettlementDelay + o.cfg.SettlementTimeout))
	return o.journal.ListPendingOlderThan(ctx, cutoff, limit)
}

// GetBalance returns the wallet for (ownerID, currency); a never-touched
// pair reads as a zero-balance wallet.
func (o *Orchestrator) GetBalance(ctx context.Context, ownerID, currency string) (*domain.Wallet, error) {
	if err := domain.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	return o.writer.Balance(ctx, ownerID, currency)
}

// Cancel aborts a pending flow before settlement begins. Once funds have
// been reserved, cancellation runs the same refund path as a settlement
// failure; it is never a bare status flip. After settlement has started the
// transaction can no longer be cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	tx, err := o.journal.Get(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if tx.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is already %s", domain.ErrInvalidTransition, referenceID, tx.Status)
	}

	o.mu.Lock()
	f, ok := o.inflight[referenceID]
	if !ok || f.settling {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: settlement already in progress for %s", domain.ErrInvalidTransition, referenceID)
	}
	delete(o.inflight, referenceID)
	cancelTimer := f.cancelTimer
	alreadyRefunded := f.refunded
	o.mu.Unlock()

	if cancelTimer != nil {
		cancelTimer()
	}

	if !alreadyRefunded {
		if err := o.refundReservation(ctx, tx); err != nil {
			o.markStuck(tx, err)
			return nil, fmt.Errorf("%w: cancel refund for %s did not apply", domain.ErrStuckTransaction, referenceID)
		}
	}

	cancelled, err := o.journal.Transition(ctx, referenceID, domain.StatusCancelled)
	if err != nil {
		// The refund landed but the status write did not. Park the flight
		// again so a retried Cancel can finish the flip without paying the
		// reservation back a second time.
		o.mu.Lock()
		o.inflight[referenceID] = &flight{refunded: true}
		o.mu.Unlock()
		return nil, fmt.Errorf("cancel %s: refund applied but status update failed: %w", referenceID, err)
	}

	if o.metrics != nil {
		o.metrics.FlowsCancelled.Inc()
	}

	return cancelled, nil
}

// schedule registers the flight and arms the settlement timer. The
// per-wallet lock is never held across this suspension point.
func (o *Orchestrator) schedule(tx *domain.Transaction) {
	f := &flight{}

	o.mu.Lock()
	o.inflight[tx.ReferenceID] = f
	o.mu.Unlock()

	cancel := o.scheduler.After(o.cfg.SettlementDelay, func() {
		o.settle(tx)
	})

	o.mu.Lock()
	if current, ok := o.inflight[tx.ReferenceID]; ok && current == f {
		f.cancelTimer = cancel
	}
	o.mu.Unlock()
}

// settle resolves one flow: ask the gateway for the outcome, apply the
// success leg or the compensating refund, and record the terminal status.
func (o *Orchestrator) settle(tx *domain.Transaction) {
	o.mu.Lock()
	f, ok := o.inflight[tx.ReferenceID]
	if !ok || f.refunded {
		// Cancelled between timer fire and now.
		o.mu.Unlock()
		return
	}
	f.settling = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inflight, tx.ReferenceID)
		o.mu.Unlock()
	}()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.SettlementTimeout)
	defer cancel()

	err := o.gateway.Settle(ctx, tx)
	if err == nil {
		err = o.applySuccessLeg(ctx, tx)
	}

	if err == nil {
		if _, terr := o.journal.Transition(ctx, tx.ReferenceID, domain.StatusCompleted); terr != nil {
			o.logger.Error().
				Err(terr).
				Str("reference_id", tx.ReferenceID).
				Msg("settlement succeeded but status update failed")
		}
		o.countSettlement(tx.Kind, "completed", start)
		return
	}

	o.logger.Warn().
		Err(err).
		Str("reference_id", tx.ReferenceID).
		Str("kind", string(tx.Kind)).
		Msg("settlement failed")

	// The settlement deadline may already be spent; bookkeeping and the
	// refund get a fresh window.
	fctx, fcancel := context.WithTimeout(context.Background(), o.cfg.SettlementTimeout)
	defer fcancel()

	if err := o.refundReservation(fctx, tx); err != nil {
		o.markStuck(tx, err)
		o.countSettlement(tx.Kind, "stuck", start)
		return
	}

	if _, terr := o.journal.Transition(fctx, tx.ReferenceID, domain.StatusFailed); terr != nil {
		o.logger.Error().
			Err(terr).
			Str("reference_id", tx.ReferenceID).
			Msg("settlement failure recorded in wallet but status update failed")
	}
	o.countSettlement(tx.Kind, "failed", start)
}

// applySuccessLeg applies the credit owed once the gateway confirms.
func (o *Orchestrator) applySuccessLeg(ctx context.Context, tx *domain.Transaction) error {
	switch tx.Kind {
	case domain.KindDeposit:
		_, err := o.writer.Credit(ctx, tx.OwnerID, tx.Currency, tx.Amount)
		return err
	case domain.KindTransfer:
		recipient := tx.MetaString(domain.MetaRecipientID)
		if recipient == "" {
			return fmt.Errorf("transfer %s has no recipient", tx.ReferenceID)
		}
		_, err := o.writer.Credit(ctx, recipient, tx.Currency, tx.Amount)
		return err
	case domain.KindBuyCrypto, domain.KindSellCrypto:
		_, err := o.writer.Credit(ctx, tx.OwnerID, tx.Currency, tx.Amount)
		return err
	default:
		// Withdrawal and airtime move no further funds on success; the
		// reservation already left the wallet.
		return nil
	}
}

// refundReservation reverses the start-time debit of a flow. This is the
// single compensation path used by settlement failures and cancellations.
func (o *Orchestrator) refundReservation(ctx context.Context, tx *domain.Transaction) error {
	currency, amount, err := o.reservation(tx)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	if _, err := o.writer.Credit(ctx, tx.OwnerID, currency, amount); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.CompensationsTotal.WithLabelValues(string(tx.Kind)).Inc()
	}
	return nil
}

// reservation names the funds a flow debited at start: currency and amount.
// Deposits reserve nothing.
func (o *Orchestrator) reservation(tx *domain.Transaction) (string, decimal.Decimal, error) {
	switch tx.Kind {
	case domain.KindDeposit:
		return tx.Currency, decimal.Zero, nil
	case domain.KindBuyCrypto, domain.KindSellCrypto:
		sellCurrency := tx.MetaString(domain.MetaSellCurrency)
		sellAmount, err := decimal.NewFromString(tx.MetaString(domain.MetaSellAmount))
		if err != nil || sellCurrency == "" {
			return "", decimal.Zero, fmt.Errorf("trade %s has malformed sell leg metadata", tx.ReferenceID)
		}
		return sellCurrency, sellAmount.Add(tx.Fee), nil
	default:
		return tx.Currency, tx.TotalDebit(), nil
	}
}

// markStuck records a failed compensation: the loudest error class this
// system has. The transaction stays pending for manual reconciliation.
func (o *Orchestrator) markStuck(tx *domain.Transaction, cause error) {
	o.logger.Error().
		Err(cause).
		Str("reference_id", tx.ReferenceID).
		Str("owner_id", tx.OwnerID).
		Str("kind", string(tx.Kind)).
		Str("amount", tx.Amount.String()).
		Str("fee", tx.Fee.String()).
		Msg("compensating refund failed; transaction stuck with funds in limbo")

	if o.metrics != nil {
		o.metrics.StuckTransactions.Inc()
	}
}

func (o *Orchestrator) validateFlow(kind domain.TransactionKind, ownerID, currency string, amount, fee decimal.Decimal, metadata map[string]any) error {
	if err := domain.ValidateOwnerID(ownerID); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	if fee.IsNegative() {
		return domain.ErrInvalidAmount
	}
	return domain.ValidateMetadata(metadata)
}

func (o *Orchestrator) countStart(kind domain.TransactionKind) {
	if o.metrics != nil {
		o.metrics.FlowsStarted.WithLabelValues(string(kind)).Inc()
	}
}

func (o *Orchestrator) countReject(kind domain.TransactionKind, reason string) {
	if o.metrics != nil {
		o.metrics.FlowsRejected.WithLabelValues(string(kind), reason).Inc()
	}
}

func (o *Orchestrator) countSettlement(kind domain.TransactionKind, outcome string, start time.Time) {
	if o.metrics != nil {
		o.metrics.SettlementsTotal.WithLabelValues(string(kind), outcome).Inc()
		o.metrics.SettlementTime.Observe(time.Since(start).Seconds())
	}
}
