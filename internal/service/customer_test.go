package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "090-1234-5678", want: "+819012345678"},
		{in: "+81 90 1234 5678", want: "+819012345678"},
		{in: "03-1234-5678", want: "+81312345678"},
		{in: "  ", want: ""},
		{in: "12", wantErr: true},
		{in: "phone", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// customerRepo is a CustomerStore over a slice.
type customerRepo struct {
	rows     []model.Customer
	searched []string
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.ID = "cus-new"
	r.rows = append(r.rows, *c)
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	for _, c := range r.rows {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (r *customerRepo) Search(ctx context.Context, phone, name string, limit int) ([]model.Customer, error) {
	r.searched = append(r.searched, phone, name)
	return r.rows, nil
}

func (r *customerRepo) Visits(ctx context.Context, customerID string, limit int) ([]repository.Visit, error) {
	return []repository.Visit{{PaymentID: "p1", Date: day}}, nil
}

type ticketList []model.CustomerTicket

func (l ticketList) ListByCustomer(ctx context.Context, customerID string) ([]model.CustomerTicket, error) {
	return l, nil
}

func TestCustomerService(t *testing.T) {
	ctx := context.Background()
	repo := &customerRepo{}
	svc := NewCustomerService(repo, ticketList{{ID: hanaPack, SessionsRemaining: 3}})

	c, err := svc.Create(ctx, CustomerInput{LastName: " Sato ", FirstName: "Hana", PhoneNumber: "090 1234 5678"})
	require.NoError(t, err)
	assert.Equal(t, "Sato", c.LastName)
	assert.Equal(t, hanaPhone, c.PhoneNumber)

	_, err = svc.Create(ctx, CustomerInput{PhoneNumber: "090 1234 5678"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CustomerInput{LastName: "Sato", BaseVisitCount: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tickets, 1)
	_, err = svc.Get(ctx, "cus-x")
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)

	_, err = svc.Search(ctx, "090-1234-5678", 0)
	require.NoError(t, err)
	_, err = svc.Search(ctx, "Sato", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{hanaPhone, "090-1234-5678", "", "Sato"}, repo.searched)
	_, err = svc.Search(ctx, " ", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	visits, err := svc.Visits(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Len(t, visits, 1)
}
