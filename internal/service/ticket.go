package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// TicketPlans reads ticket plans.
type TicketPlans interface {
	PlanByID(ctx context.Context, id string) (*model.TicketPlan, error)
}

// CustomerLookup reads one customer.
type CustomerLookup interface {
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

// PurchaseRequest sells a ticket plan to a customer.  AmountPaid may be
// less than the plan price; the rest is paid later in instalments.
type PurchaseRequest struct {
	CustomerID    string      `json:"customer_id"`
	PlanID        string      `json:"plan_id"`
	StaffID       string      `json:"staff_id"`
	PurchaseDate  *model.Date `json:"purchase_date"`
	AmountPaid    *int        `json:"amount_paid"`
	PaymentMethod string      `json:"payment_method"`
	CashAmount    int         `json:"cash_amount"`
	CardAmount    int         `json:"card_amount"`
	Notes         string      `json:"notes"`
}

// InstalmentRequest pays part of a ticket's outstanding balance.
type InstalmentRequest struct {
	StaffID       string `json:"staff_id"`
	Amount        int    `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	CashAmount    int    `json:"cash_amount"`
	CardAmount    int    `json:"card_amount"`
	Notes         string `json:"notes"`
}

// TicketReceipt is the result of a purchase or instalment.
type TicketReceipt struct {
	Ticket           model.CustomerTicket `json:"ticket"`
	Payment          *model.TicketPayment `json:"ticket_payment,omitempty"`
	Sale             *model.Payment       `json:"sale,omitempty"`
	RemainingBalance int                  `json:"remaining_balance"`
}

// TicketService sells tickets and records their payments.
type TicketService struct {
	store     Store
	plans     TicketPlans
	customers CustomerLookup
	loc       *time.Location
	now       func() time.Time
}

// NewTicketService returns a TicketService.  loc is the salon's zone,
// used for the default purchase date.
func NewTicketService(store Store, plans TicketPlans, customers CustomerLookup, loc *time.Location) *TicketService {
	if loc == nil {
		loc = time.Local
	}
	return &TicketService{store: store, plans: plans, customers: customers, loc: loc, now: time.Now}
}

func (s *TicketService) today() model.Date { return model.DateOf(s.now().In(s.loc)) }

// Purchase creates the ticket, its first instalment and the matching
// sales row in one transaction.
func (s *TicketService) Purchase(ctx context.Context, req PurchaseRequest) (*TicketReceipt, error) {
	if req.StaffID == "" {
		return nil, invalidInput("staff is required")
	}
	plan, err := s.plans.PlanByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	purchased := s.today()
	if req.PurchaseDate != nil {
		if _, err := model.ParseDate(string(*req.PurchaseDate)); err != nil {
			return nil, invalidInput("bad purchase date %q", *req.PurchaseDate)
		}
		purchased = *req.PurchaseDate
	}
	paid := plan.Price
	if req.AmountPaid != nil {
		paid = *req.AmountPaid
	}
	if paid < 0 || paid > plan.Price {
		return nil, invalidInput("amount paid %d must be between 0 and %d", paid, plan.Price)
	}
	method, cash, card, err := splitTender(req.PaymentMethod, paid, req.CashAmount, req.CardAmount)
	if err != nil {
		return nil, err
	}

	receipt := &TicketReceipt{}
	err = s.store.InTx(ctx, func(tx Tx) error {
		t := model.CustomerTicket{
			CustomerID:        customer.ID,
			PlanID:            plan.ID,
			ServiceID:         plan.ServiceID,
			PlanName:          plan.Name,
			SessionsRemaining: plan.TotalSessions,
			PurchaseDate:      purchased,
			ExpiryDate:        purchased.AddDays(plan.ValidityDays),
			PurchasePrice:     plan.Price,
		}
		if err := tx.InsertTicket(ctx, &t); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		receipt.Ticket, receipt.Payment, receipt.Sale = t, nil, nil
		if paid == 0 {
			return nil
		}
		tp, sale, err := s.recordPayment(ctx, tx, &t, req.StaffID, paid, method, cash, card, req.Notes)
		if err != nil {
			return err
		}
		receipt.Ticket.PaidAmount = paid
		receipt.Payment, receipt.Sale = tp, sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.RemainingBalance = receipt.Ticket.RemainingBalance()
	return receipt, nil
}

// AddInstalment pays part of the outstanding balance of a ticket.
func (s *TicketService) AddInstalment(ctx context.Context, ticketID string, req InstalmentRequest) (*TicketReceipt, error) {
	if req.StaffID == "" {
		return nil, invalidInput("staff is required")
	}
	if req.Amount <= 0 {
		return nil, invalidInput("amount must be positive")
	}
	method, cash, card, err := splitTender(req.PaymentMethod, req.Amount, req.CashAmount, req.CardAmount)
	if err != nil {
		return nil, err
	}
	receipt := &TicketReceipt{}
	err = s.store.InTx(ctx, func(tx Tx) error {
		locked, err := tx.LockTickets(ctx, []string{ticketID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return fmt.Errorf("%w: ticket %q", scheduling.ErrUnknownReference, ticketID)
		}
		t := locked[0]
		if rest := t.RemainingBalance(); req.Amount > rest {
			return invalidInput("amount %d exceeds the remaining balance %d", req.Amount, rest)
		}
		tp, sale, err := s.recordPayment(ctx, tx, &t, req.StaffID, req.Amount, method, cash, card, req.Notes)
		if err != nil {
			return err
		}
		t.PaidAmount += req.Amount
		receipt.Ticket, receipt.Payment, receipt.Sale = t, tp, sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.RemainingBalance = receipt.Ticket.RemainingBalance()
	return receipt, nil
}

// recordPayment writes the instalment and the sales row that makes it
// show up in the day's takings.
func (s *TicketService) recordPayment(ctx context.Context, tx Tx, t *model.CustomerTicket, staffID string, amount int, method string, cash, card int, notes string) (*model.TicketPayment, *model.Payment, error) {
	now := s.now()
	tp := &model.TicketPayment{
		CustomerTicketID: t.ID,
		PaymentDate:      now,
		AmountPaid:       amount,
		PaymentMethod:    method,
		Notes:            notes,
	}
	if err := tx.AddTicketPayment(ctx, tp); err != nil {
		return nil, nil, fmt.Errorf("insert ticket payment: %w", err)
	}
	ticketID := t.ID
	sale := &model.Payment{
		CustomerID:      t.CustomerID,
		StaffID:         staffID,
		ServiceName:     t.PlanName,
		ServicePrice:    t.PurchasePrice,
		PaymentType:     model.PaymentTicket,
		TicketID:        &ticketID,
		ServiceSubtotal: amount,
		TotalAmount:     amount,
		PaymentMethod:   method,
		CashAmount:      cash,
		CardAmount:      card,
		Notes:           notes,
		PaymentDate:     now,
	}
	if err := tx.InsertPayment(ctx, sale); err != nil {
		return nil, nil, fmt.Errorf("insert sale: %w", err)
	}
	return tp, sale, nil
}
