package service

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

func TestPurchaseInFull(t *testing.T) {
	f := newFixture(t)
	rc, err := f.tickets.Purchase(context.Background(), PurchaseRequest{CustomerID: taro, PlanID: fivePack, StaffID: ken})
	require.NoError(t, err)

	assert.Equal(t, 5, rc.Ticket.SessionsRemaining)
	assert.Equal(t, model.Date("2025-03-10"), rc.Ticket.PurchaseDate)
	assert.Equal(t, model.Date("2025-06-08"), rc.Ticket.ExpiryDate)
	assert.Equal(t, bodyCare, rc.Ticket.ServiceID)
	assert.Zero(t, rc.RemainingBalance)

	require.NotNil(t, rc.Payment)
	assert.Equal(t, 25000, rc.Payment.AmountPaid)
	require.NotNil(t, rc.Sale)
	assert.Equal(t, model.PaymentTicket, rc.Sale.PaymentType)
	assert.Equal(t, 25000, rc.Sale.TotalAmount)
	assert.Equal(t, rc.Ticket.ID, lo.FromPtr(rc.Sale.TicketID))
	assert.False(t, rc.Sale.TicketSessionUsed)

	stored := f.store.ticket(rc.Ticket.ID)
	assert.Equal(t, 25000, stored.PaidAmount)

	// voiding the sale does not touch the sessions
	_, err = f.checkout.CancelPayment(context.Background(), rc.Sale.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 5, f.store.ticket(rc.Ticket.ID).SessionsRemaining)
}

func TestPurchaseInInstalments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := model.Date("2025-02-01")
	rc, err := f.tickets.Purchase(ctx, PurchaseRequest{
		CustomerID: hana, PlanID: fivePack, StaffID: anna, PurchaseDate: &date,
		AmountPaid: lo.ToPtr(10000), PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 15000, rc.RemainingBalance)
	assert.Equal(t, model.Date("2025-05-02"), rc.Ticket.ExpiryDate)
	assert.Equal(t, 10000, rc.Sale.CardAmount)

	_, err = f.tickets.AddInstalment(ctx, rc.Ticket.ID, InstalmentRequest{StaffID: anna, Amount: 20000})
	assert.ErrorIs(t, err, ErrInvalidInput)

	next, err := f.tickets.AddInstalment(ctx, rc.Ticket.ID, InstalmentRequest{StaffID: anna, Amount: 15000})
	require.NoError(t, err)
	assert.Zero(t, next.RemainingBalance)
	assert.Equal(t, 15000, next.Sale.TotalAmount)

	_, err = f.tickets.AddInstalment(ctx, rc.Ticket.ID, InstalmentRequest{StaffID: anna, Amount: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.tickets.AddInstalment(ctx, "tk-missing", InstalmentRequest{StaffID: anna, Amount: 1})
	assert.ErrorIs(t, err, scheduling.ErrUnknownReference)
}

func TestPurchaseWithoutPayment(t *testing.T) {
	f := newFixture(t)
	rc, err := f.tickets.Purchase(context.Background(), PurchaseRequest{CustomerID: taro, PlanID: fivePack, StaffID: ken, AmountPaid: lo.ToPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, rc.Payment)
	assert.Nil(t, rc.Sale)
	assert.Equal(t, 25000, rc.RemainingBalance)
}

func TestPurchaseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name string
		req  PurchaseRequest
		want error
	}{
		{"unknown plan", PurchaseRequest{CustomerID: taro, PlanID: "plan-x", StaffID: ken}, repository.ErrPlanNotFound},
		{"unknown customer", PurchaseRequest{CustomerID: "cus-x", PlanID: fivePack, StaffID: ken}, repository.ErrCustomerNotFound},
		{"no staff", PurchaseRequest{CustomerID: taro, PlanID: fivePack}, ErrInvalidInput},
		{"overpaid", PurchaseRequest{CustomerID: taro, PlanID: fivePack, StaffID: ken, AmountPaid: lo.ToPtr(30000)}, ErrInvalidInput},
		{"bad date", PurchaseRequest{CustomerID: taro, PlanID: fivePack, StaffID: ken, PurchaseDate: lo.ToPtr(model.Date("soon"))}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tickets.Purchase(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSplitTender(t *testing.T) {
	tests := []struct {
		method     string
		cash, card int
		wantMethod string
		wantCash   int
		wantCard   int
		wantErr    bool
	}{
		{method: "", wantMethod: MethodCash, wantCash: 3000},
		{method: " CARD ", wantMethod: MethodCard, wantCard: 3000},
		{method: "mixed", cash: 1000, card: 2000, wantMethod: MethodMixed, wantCash: 1000, wantCard: 2000},
		{method: "mixed", cash: 1000, card: 1000, wantErr: true},
		{method: "mixed", cash: -1000, card: 4000, wantErr: true},
		{method: "paypay", wantErr: true},
	}
	for _, tt := range tests {
		method, cash, card, err := splitTender(tt.method, 3000, tt.cash, tt.card)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidInput, tt.method)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.wantMethod, method)
		assert.Equal(t, tt.wantCash, cash)
		assert.Equal(t, tt.wantCard, card)
	}
}
