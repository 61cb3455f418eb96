package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/infrastructure/metrics"
)

// EntryUseCase is the ledger transition engine. Every create, edit and delete
// runs as one transaction that first locks the balance row, so transitions
// serialize against each other and either apply all of their effects or none.
type EntryUseCase struct {
	txManager   TransactionManager
	entryRepo   EntryRepository
	balanceRepo BalanceRepository
	orderIDs    OrderIDAllocator
	resolver    *ProfitLossResolver
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewEntryUseCase creates a new EntryUseCase. metrics may be nil.
func NewEntryUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	balanceRepo BalanceRepository,
	orderIDs OrderIDAllocator,
	resolver *ProfitLossResolver,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		orderIDs:    orderIDs,
		resolver:    resolver,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     m,
	}
}

// inTransition runs fn inside a transaction with the balance row locked,
// retrying on transient storage conflicts.
func (uc *EntryUseCase) inTransition(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return uc.retrier.Retry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if _, err := uc.balanceRepo.GetForUpdate(ctx, tx); err != nil {
			return err
		}

		if err := fn(ctx, tx); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

// CreateEntryInput represents input for creating an entry.
type CreateEntryInput struct {
	Kind    domain.Kind
	Name    string
	Company string
	Phone   string
	Note    string
	Address string

	TotalAmount    decimal.Decimal
	Advance        decimal.Decimal
	RestMoney      decimal.Decimal
	DeliveryCharge decimal.Decimal

	LinkedSellID string

	DeliveryType   domain.DeliveryType
	DeliveryAmount decimal.Decimal

	CreatedBy string
}

func (in CreateEntryInput) validate() error {
	if !in.Kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, in.Kind)
	}

	for _, amount := range []decimal.Decimal{in.TotalAmount, in.Advance, in.RestMoney, in.DeliveryCharge} {
		if err := domain.ValidateAmount(amount); err != nil {
			return err
		}
	}

	if in.Kind.RequiresLinkedSell() && in.LinkedSellID == "" {
		return fmt.Errorf("%w: %s entries need linkedSellId", domain.ErrLinkedSellRequired, in.Kind)
	}

	if !in.Kind.RequiresLinkedSell() && in.LinkedSellID != "" {
		return fmt.Errorf("%w: %s", domain.ErrLinkedSellForbidden, in.Kind)
	}

	if in.Kind == domain.KindDelivery {
		if in.DeliveryType != domain.DeliveryCustomer && in.DeliveryType != domain.DeliveryOwn {
			return fmt.Errorf("%w: deliveryType must be customer or own", domain.ErrInvalidDelivery)
		}

		if !in.DeliveryAmount.IsPositive() {
			return fmt.Errorf("%w: delivery amount must be positive", domain.ErrInvalidDelivery)
		}
	}

	if in.Kind == domain.KindRestMoney && !in.RestMoney.IsPositive() {
		return fmt.Errorf("%w: restMoney amount must be positive", domain.ErrInvalidAmount)
	}

	return nil
}

// CreateEntry records a new financial event and applies its balance effect.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var created *domain.Entry

	err := uc.inTransition(ctx, func(ctx context.Context, tx Transaction) error {
		var sell *domain.Entry

		if input.LinkedSellID != "" {
			var err error

			sell, err = uc.lockLinkedSell(ctx, tx, input.LinkedSellID)
			if err != nil {
				return err
			}
		}

		entry := uc.newEntry(input)

		var err error
		switch input.Kind {
		case domain.KindSell:
			err = uc.createSell(ctx, tx, entry)
		case domain.KindPurchase:
			err = uc.createPurchase(ctx, tx, entry, sell)
		case domain.KindRestMoney:
			err = uc.createRestMoney(ctx, tx, entry, sell, input.RestMoney)
		case domain.KindDelivery:
			entry, err = uc.createDelivery(ctx, tx, entry, sell, input.DeliveryType, input.DeliveryAmount)
		default: // expense, other
			err = uc.createDebit(ctx, tx, entry)
		}
		if err != nil {
			return err
		}

		created = entry

		return nil
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransitionErrors.WithLabelValues("create").Inc()
		}

		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.WithLabelValues(string(input.Kind)).Inc()
		uc.metrics.TransitionDuration.Observe(time.Since(start).Seconds())
	}

	return uc.entryRepo.GetByID(ctx, created.ID)
}

func (uc *EntryUseCase) newEntry(input CreateEntryInput) *domain.Entry {
	return &domain.Entry{
		ID:             uc.idGen.Generate(),
		Kind:           input.Kind,
		Name:           input.Name,
		Company:        input.Company,
		Phone:          input.Phone,
		Note:           input.Note,
		Address:        input.Address,
		TotalAmount:    input.TotalAmount,
		Advance:        input.Advance,
		RestMoney:      input.RestMoney,
		DeliveryCharge: input.DeliveryCharge,
		LinkedSellID:   input.LinkedSellID,
		CreatedBy:      input.CreatedBy,
		Completion:     domain.CompletionCompleted,
		ReviewState:    domain.ReviewPending,
		ProfitOrLoss:   decimal.Zero,
		ProfitKind:     domain.ProfitKindNeutral,
		CreatedAt:      time.Now().UTC(),
	}
}

func (uc *EntryUseCase) lockLinkedSell(ctx context.Context, tx Transaction, sellID string) (*domain.Entry, error) {
	sell, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, sellID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil, domain.ErrLinkedSellNotFound
		}

		return nil, err
	}

	if sell.Kind != domain.KindSell {
		return nil, domain.ErrLinkedSellNotSell
	}

	return sell, nil
}

func (uc *EntryUseCase) createSell(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	orderID, err := uc.orderIDs.NextRootID(ctx, tx)
	if err != nil {
		return err
	}

	entry.OrderID = orderID
	entry.Completion = domain.CompletionFor(entry.Advance, entry.RestMoney, entry.TotalAmount)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, entry.Advance); err != nil {
		return err
	}

	if entry.Completion == domain.CompletionCompleted {
		return uc.resolver.Resolve(ctx, tx, entry.ID)
	}

	return nil
}

func (uc *EntryUseCase) createPurchase(ctx context.Context, tx Transaction, entry, sell *domain.Entry) error {
	orderID, err := uc.orderIDs.NextChildID(ctx, tx, sell)
	if err != nil {
		return err
	}

	entry.OrderID = orderID

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	return uc.balanceRepo.Adjust(ctx, tx, entry.CostAmount().Neg())
}

func (uc *EntryUseCase) createRestMoney(ctx context.Context, tx Transaction, entry, sell *domain.Entry, amount decimal.Decimal) error {
	orderID, err := uc.orderIDs.NextChildID(ctx, tx, sell)
	if err != nil {
		return err
	}

	entry.OrderID = orderID
	// The received amount is recorded on both fields so kind-wide sums over
	// totalAmount include partial payments.
	entry.TotalAmount = amount
	entry.RestMoney = amount

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	newRest := sell.RestMoney.Add(amount)
	wasCompleted := sell.Completion == domain.CompletionCompleted
	newCompletion := domain.CompletionFor(sell.Advance, newRest, sell.TotalAmount)

	if err := uc.entryRepo.UpdateSellPayment(ctx, tx, sell.ID, newRest, newCompletion); err != nil {
		return err
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, amount); err != nil {
		return err
	}

	if !wasCompleted && newCompletion == domain.CompletionCompleted {
		return uc.resolver.Resolve(ctx, tx, sell.ID)
	}

	if wasCompleted && newCompletion == domain.CompletionProcessing {
		return uc.reverseProfit(ctx, tx, sell)
	}

	return nil
}

func (uc *EntryUseCase) createDelivery(ctx context.Context, tx Transaction, entry, sell *domain.Entry, deliveryType domain.DeliveryType, amount decimal.Decimal) (*domain.Entry, error) {
	orderID, err := uc.orderIDs.NextChildID(ctx, tx, sell)
	if err != nil {
		return nil, err
	}

	entry.OrderID = orderID
	entry.TotalAmount = amount

	if deliveryType == domain.DeliveryOwn {
		entry.Note = domain.NoteDeliveryOwn

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}

		if err := uc.balanceRepo.Adjust(ctx, tx, amount.Neg()); err != nil {
			return nil, err
		}

		return entry, uc.reresolve(ctx, tx, sell.ID)
	}

	// Customer-paid delivery: the charge collected equals the charge paid
	// out, so two record-keeping entries with no balance effect.
	entry.Note = domain.NoteDeliveryCustomer

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	paidOutID, err := uc.orderIDs.NextChildID(ctx, tx, sell)
	if err != nil {
		return nil, err
	}

	paidOut := *entry
	paidOut.ID = uc.idGen.Generate()
	paidOut.OrderID = paidOutID
	paidOut.Note = domain.NoteDeliveryCustomerPaidOut

	if err := uc.entryRepo.Create(ctx, tx, &paidOut); err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *EntryUseCase) createDebit(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	orderID, err := uc.orderIDs.NextRootID(ctx, tx)
	if err != nil {
		return err
	}

	entry.OrderID = orderID

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	return uc.balanceRepo.Adjust(ctx, tx, entry.TotalAmount.Neg())
}

// reverseProfit debits the profit previously credited for the sell and resets
// its profit fields to neutral. Together with Resolve this keeps the balance
// reconciled across every completed->processing edge.
func (uc *EntryUseCase) reverseProfit(ctx context.Context, tx Transaction, sell *domain.Entry) error {
	if sell.ProfitKind == domain.ProfitKindNeutral && sell.ProfitOrLoss.IsZero() {
		return nil
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, sell.ProfitOrLoss.Neg()); err != nil {
		return err
	}

	if err := uc.entryRepo.UpdateProfit(ctx, tx, sell.ID, decimal.Zero, domain.ProfitKindNeutral); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ProfitReversals.Inc()
	}

	return nil
}

// reresolve refreshes a completed sell's profit after its cost basis changed:
// the previous credit is reversed, then the resolver runs once. A sell still
// processing keeps neutral profit, so nothing to do.
func (uc *EntryUseCase) reresolve(ctx context.Context, tx Transaction, sellID string) error {
	sell, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, sellID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}

		return err
	}

	if sell.Completion != domain.CompletionCompleted {
		return nil
	}

	if err := uc.reverseProfit(ctx, tx, sell); err != nil {
		return err
	}

	return uc.resolver.Resolve(ctx, tx, sellID)
}

// UpdateEntryInput represents input for editing an entry. Nil fields are left
// unchanged. Kind and linkedSellId are immutable by contract.
type UpdateEntryInput struct {
	EntryID  string
	EditorID string

	Name    *string
	Company *string
	Phone   *string
	Note    *string
	Address *string

	TotalAmount    *decimal.Decimal
	Advance        *decimal.Decimal
	RestMoney      *decimal.Decimal
	DeliveryCharge *decimal.Decimal
}

func (in UpdateEntryInput) validate() error {
	for _, amount := range []*decimal.Decimal{in.TotalAmount, in.Advance, in.RestMoney, in.DeliveryCharge} {
		if amount == nil {
			continue
		}

		if err := domain.ValidateAmount(*amount); err != nil {
			return err
		}
	}

	return nil
}

// UpdateEntry edits an entry's fields and propagates the amount deltas to the
// balance, the owning sell and the profit/loss state.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*domain.Entry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var kind domain.Kind

	err := uc.inTransition(ctx, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, input.EntryID)
		if err != nil {
			return err
		}

		if entry.CreatedBy != input.EditorID {
			return domain.ErrNotCreator
		}

		applyText(entry, input)

		switch entry.Kind {
		case domain.KindExpense, domain.KindOther:
			err = uc.editDebit(ctx, tx, entry, input)
		case domain.KindPurchase:
			err = uc.editPurchase(ctx, tx, entry, input)
		case domain.KindRestMoney:
			err = uc.editRestMoney(ctx, tx, entry, input)
		case domain.KindDelivery:
			err = uc.editDelivery(ctx, tx, entry, input)
		case domain.KindSell:
			err = uc.editSell(ctx, tx, entry, input)
		}
		if err != nil {
			return err
		}

		// Any edit reopens the review workflow.
		entry.ReviewState = domain.ReviewPending
		entry.ReviewedBy = ""
		entry.ReviewNote = ""

		kind = entry.Kind

		return uc.entryRepo.Update(ctx, tx, entry)
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransitionErrors.WithLabelValues("update").Inc()
		}

		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesUpdated.WithLabelValues(string(kind)).Inc()
		uc.metrics.TransitionDuration.Observe(time.Since(start).Seconds())
	}

	return uc.entryRepo.GetByID(ctx, input.EntryID)
}

func applyText(entry *domain.Entry, input UpdateEntryInput) {
	if input.Name != nil {
		entry.Name = *input.Name
	}
	if input.Company != nil {
		entry.Company = *input.Company
	}
	if input.Phone != nil {
		entry.Phone = *input.Phone
	}
	if input.Note != nil && entry.Kind != domain.KindDelivery {
		entry.Note = *input.Note
	}
	if input.Address != nil {
		entry.Address = *input.Address
	}
}

func (uc *EntryUseCase) editDebit(ctx context.Context, tx Transaction, entry *domain.Entry, input UpdateEntryInput) error {
	if input.TotalAmount == nil {
		return nil
	}

	diff := input.TotalAmount.Sub(entry.TotalAmount)
	entry.TotalAmount = *input.TotalAmount

	return uc.balanceRepo.Adjust(ctx, tx, diff.Neg())
}

func (uc *EntryUseCase) editPurchase(ctx context.Context, tx Transaction, entry *domain.Entry, input UpdateEntryInput) error {
	oldCost := entry.CostAmount()

	if input.TotalAmount != nil {
		entry.TotalAmount = *input.TotalAmount
	}
	if input.DeliveryCharge != nil {
		entry.DeliveryCharge = *input.DeliveryCharge
	}

	diff := entry.CostAmount().Sub(oldCost)
	if diff.IsZero() {
		return nil
	}

	return uc.balanceRepo.Adjust(ctx, tx, diff.Neg())
}

func (uc *EntryUseCase) editRestMoney(ctx context.Context, tx Transaction, entry *domain.Entry, input UpdateEntryInput) error {
	if input.RestMoney == nil {
		return nil
	}

	diff := input.RestMoney.Sub(entry.RestMoney)
	entry.RestMoney = *input.RestMoney
	entry.TotalAmount = *input.RestMoney

	if diff.IsZero() {
		return nil
	}

	sell, err := uc.lockLinkedSell(ctx, tx, entry.LinkedSellID)
	if err != nil {
		return err
	}

	newRest := sell.RestMoney.Add(diff)
	wasCompleted := sell.Completion == domain.CompletionCompleted
	newCompletion := domain.CompletionFor(sell.Advance, newRest, sell.TotalAmount)

	if err := uc.entryRepo.UpdateSellPayment(ctx, tx, sell.ID, newRest, newCompletion); err != nil {
		return err
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, diff); err != nil {
		return err
	}

	if !wasCompleted && newCompletion == domain.CompletionCompleted {
		return uc.resolver.Resolve(ctx, tx, sell.ID)
	}

	if wasCompleted && newCompletion == domain.CompletionProcessing {
		return uc.reverseProfit(ctx, tx, sell)
	}

	return nil
}

func (uc *EntryUseCase) editDelivery(ctx context.Context, tx Transaction, entry *domain.Entry, input UpdateEntryInput) error {
	if input.TotalAmount == nil {
		return nil
	}

	diff := input.TotalAmount.Sub(entry.TotalAmount)
	entry.TotalAmount = *input.TotalAmount

	if diff.IsZero() || !entry.IsOwnDelivery() {
		return nil
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, diff.Neg()); err != nil {
		return err
	}

	// Persist the new amount before the resolver re-sums the cost basis.
	if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
		return err
	}

	return uc.reresolve(ctx, tx, entry.LinkedSellID)
}

func (uc *EntryUseCase) editSell(ctx context.Context, tx Transaction, entry *domain.Entry, input UpdateEntryInput) error {
	oldAdvance := entry.Advance
	oldTotal := entry.TotalAmount
	wasCompleted := entry.Completion == domain.CompletionCompleted

	if input.TotalAmount != nil {
		entry.TotalAmount = *input.TotalAmount
	}
	if input.Advance != nil {
		entry.Advance = *input.Advance
	}

	// Accrued rest is owned by restMoney transitions, not direct edits.
	entry.Completion = domain.CompletionFor(entry.Advance, entry.RestMoney, entry.TotalAmount)

	advanceDiff := entry.Advance.Sub(oldAdvance)
	if !advanceDiff.IsZero() {
		if err := uc.balanceRepo.Adjust(ctx, tx, advanceDiff); err != nil {
			return err
		}
	}

	nowCompleted := entry.Completion == domain.CompletionCompleted

	switch {
	case !wasCompleted && nowCompleted:
		// Persist the new amounts first so the resolver sees them.
		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.resolver.Resolve(ctx, tx, entry.ID); err != nil {
			return err
		}

		return uc.refreshProfit(ctx, tx, entry)

	case wasCompleted && !nowCompleted:
		if err := uc.reverseProfit(ctx, tx, entry); err != nil {
			return err
		}

		entry.ProfitOrLoss = decimal.Zero
		entry.ProfitKind = domain.ProfitKindNeutral

	case wasCompleted && nowCompleted && !entry.TotalAmount.Equal(oldTotal):
		// Still fully paid but the total changed: the previous profit credit
		// no longer matches, reverse it and resolve again.
		if err := uc.reverseProfit(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.resolver.Resolve(ctx, tx, entry.ID); err != nil {
			return err
		}

		return uc.refreshProfit(ctx, tx, entry)
	}

	return nil
}

// refreshProfit reloads the resolver-written profit fields into the in-memory
// entry so the final Update does not clobber them.
func (uc *EntryUseCase) refreshProfit(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	fresh, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entry.ID)
	if err != nil {
		return err
	}

	entry.ProfitOrLoss = fresh.ProfitOrLoss
	entry.ProfitKind = fresh.ProfitKind

	return nil
}

// DeleteEntry removes an entry, reverses its cumulative balance effect and,
// for sells, cascades over every linked child.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, entryID, actorID string) error {
	start := time.Now()

	var kind domain.Kind

	err := uc.inTransition(ctx, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		if entry.CreatedBy != actorID {
			return domain.ErrNotCreator
		}

		kind = entry.Kind

		switch entry.Kind {
		case domain.KindExpense, domain.KindOther:
			if err := uc.balanceRepo.Adjust(ctx, tx, entry.TotalAmount); err != nil {
				return err
			}

			return uc.entryRepo.Delete(ctx, tx, entry.ID)

		case domain.KindPurchase:
			if err := uc.balanceRepo.Adjust(ctx, tx, entry.CostAmount()); err != nil {
				return err
			}

			return uc.entryRepo.Delete(ctx, tx, entry.ID)

		case domain.KindRestMoney:
			return uc.deleteRestMoney(ctx, tx, entry)

		case domain.KindDelivery:
			return uc.deleteDelivery(ctx, tx, entry)

		case domain.KindSell:
			return uc.deleteSell(ctx, tx, entry)
		}

		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, entry.Kind)
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransitionErrors.WithLabelValues("delete").Inc()
		}

		return err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesDeleted.WithLabelValues(string(kind)).Inc()
		uc.metrics.TransitionDuration.Observe(time.Since(start).Seconds())
	}

	return nil
}

func (uc *EntryUseCase) deleteRestMoney(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	if err := uc.balanceRepo.Adjust(ctx, tx, entry.RestMoney.Neg()); err != nil {
		return err
	}

	if err := uc.entryRepo.Delete(ctx, tx, entry.ID); err != nil {
		return err
	}

	sell, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entry.LinkedSellID)
	if err != nil {
		// The owning sell disappearing is the resolver's defensive case.
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}

		return err
	}

	newRest := sell.RestMoney.Sub(entry.RestMoney)
	wasCompleted := sell.Completion == domain.CompletionCompleted
	newCompletion := domain.CompletionFor(sell.Advance, newRest, sell.TotalAmount)

	if err := uc.entryRepo.UpdateSellPayment(ctx, tx, sell.ID, newRest, newCompletion); err != nil {
		return err
	}

	if wasCompleted && newCompletion == domain.CompletionProcessing {
		return uc.reverseProfit(ctx, tx, sell)
	}

	if !wasCompleted && newCompletion == domain.CompletionCompleted {
		return uc.resolver.Resolve(ctx, tx, sell.ID)
	}

	return nil
}

func (uc *EntryUseCase) deleteDelivery(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	own := entry.IsOwnDelivery()

	if err := uc.entryRepo.Delete(ctx, tx, entry.ID); err != nil {
		return err
	}

	if !own {
		return uc.deleteDeliveryTwin(ctx, tx, entry)
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, entry.TotalAmount); err != nil {
		return err
	}

	return uc.reresolve(ctx, tx, entry.LinkedSellID)
}

// deleteDeliveryTwin removes the paired record of a customer-paid delivery.
// The two entries book the same amount under complementary notes; neither
// touches the balance, so the twin is deleted without any adjustment.
func (uc *EntryUseCase) deleteDeliveryTwin(ctx context.Context, tx Transaction, entry *domain.Entry) error {
	twinNote := domain.NoteDeliveryCustomerPaidOut
	if entry.Note == domain.NoteDeliveryCustomerPaidOut {
		twinNote = domain.NoteDeliveryCustomer
	}

	siblings, err := uc.entryRepo.ListByLinkedSell(ctx, tx, entry.LinkedSellID)
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		if sibling.Kind != domain.KindDelivery || sibling.Note != twinNote {
			continue
		}
		if !sibling.TotalAmount.Equal(entry.TotalAmount) {
			continue
		}

		return uc.entryRepo.Delete(ctx, tx, sibling.ID)
	}

	return nil
}

func (uc *EntryUseCase) deleteSell(ctx context.Context, tx Transaction, sell *domain.Entry) error {
	// The sell's own effects: advance credit and, when completed, the
	// resolver's profit credit.
	reversal := sell.Advance.Neg()

	if sell.Completion == domain.CompletionCompleted {
		reversal = reversal.Sub(sell.ProfitOrLoss)
	}

	// Every child's effect, per the kind effect table.
	children, err := uc.entryRepo.ListByLinkedSell(ctx, tx, sell.ID)
	if err != nil {
		return err
	}

	for _, child := range children {
		switch child.Kind {
		case domain.KindPurchase:
			reversal = reversal.Add(child.CostAmount())
		case domain.KindRestMoney:
			reversal = reversal.Sub(child.RestMoney)
		case domain.KindDelivery:
			if child.IsOwnDelivery() {
				reversal = reversal.Add(child.TotalAmount)
			}
		}
	}

	if err := uc.balanceRepo.Adjust(ctx, tx, reversal); err != nil {
		return err
	}

	if err := uc.entryRepo.DeleteByLinkedSell(ctx, tx, sell.ID); err != nil {
		return err
	}

	return uc.entryRepo.Delete(ctx, tx, sell.ID)
}

// ReviewEntryInput represents input for reviewing an entry.
type ReviewEntryInput struct {
	EntryID    string
	ReviewerID string
	Status     domain.ReviewState
	Note       string
}

// ReviewEntry records a review verdict. Reviews never touch the balance and
// the creator cannot review their own entry.
func (uc *EntryUseCase) ReviewEntry(ctx context.Context, input ReviewEntryInput) (*domain.Entry, error) {
	if input.Status != domain.ReviewCorrect && input.Status != domain.ReviewIncorrect {
		return nil, domain.ErrInvalidReview
	}

	entry, err := uc.entryRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	if entry.CreatedBy == input.ReviewerID {
		return nil, domain.ErrSelfReview
	}

	reviewed, err := uc.entryRepo.UpdateReview(ctx, input.EntryID, input.Status, input.Note, input.ReviewerID)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesReviewed.WithLabelValues(string(input.Status)).Inc()
	}

	return reviewed, nil
}

// GetEntry retrieves an entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	Limit  int
	Offset int
}

// ListEntries lists entries ordered by creation time descending.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 500 {
		input.Limit = 500
	}

	return uc.entryRepo.List(ctx, input.Limit, input.Offset)
}

// ListSells lists sell entries for linking and dashboards.
func (uc *EntryUseCase) ListSells(ctx context.Context) ([]*domain.Entry, error) {
	return uc.entryRepo.ListSells(ctx)
}

// ListRestMoney lists the partial payments received against a sell.
func (uc *EntryUseCase) ListRestMoney(ctx context.Context, sellID string) ([]*domain.Entry, error) {
	return uc.entryRepo.ListByFilter(ctx, EntryFilter{
		LinkedSellID: sellID,
		Kind:         domain.KindRestMoney,
	})
}

// ListAssigned lists a creator's entries flagged incorrect by review.
func (uc *EntryUseCase) ListAssigned(ctx context.Context, creatorID string) ([]*domain.Entry, error) {
	return uc.entryRepo.ListByCreatorAndReview(ctx, creatorID, domain.ReviewIncorrect)
}

// GetBalance returns the current running balance snapshot.
func (uc *EntryUseCase) GetBalance(ctx context.Context) (*domain.Balance, error) {
	balance, err := uc.balanceRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalanceAmount.Set(balance.Amount.InexactFloat64())
	}

	return balance, nil
}
