package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// DefaultRegion is used to parse phone numbers written without a
// country code.
const DefaultRegion = "JP"

// NormalizePhone parses a phone number and returns it in E.164 form so
// "090-1234-5678" and "+81 90 1234 5678" match.  An empty input stays
// empty.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// CustomerInput is the writable part of a customer.
type CustomerInput struct {
	LastName       string `json:"last_name"`
	FirstName      string `json:"first_name"`
	LastNameKana   string `json:"last_name_kana"`
	FirstNameKana  string `json:"first_name_kana"`
	PhoneNumber    string `json:"phone_number"`
	Email          string `json:"email"`
	BaseVisitCount int    `json:"base_visit_count"`
	Notes          string `json:"notes"`
}

func (in *CustomerInput) toModel() (*model.Customer, error) {
	if in == nil {
		return nil, invalidInput("customer is required")
	}
	last, first := strings.TrimSpace(in.LastName), strings.TrimSpace(in.FirstName)
	if last == "" && first == "" {
		return nil, invalidInput("customer name is required")
	}
	if in.BaseVisitCount < 0 {
		return nil, invalidInput("base visit count must not be negative")
	}
	phone, err := NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	return &model.Customer{
		LastName:       last,
		FirstName:      first,
		LastNameKana:   strings.TrimSpace(in.LastNameKana),
		FirstNameKana:  strings.TrimSpace(in.FirstNameKana),
		PhoneNumber:    phone,
		Email:          strings.TrimSpace(in.Email),
		BaseVisitCount: in.BaseVisitCount,
		Notes:          in.Notes,
	}, nil
}

// CustomerStore is the customer persistence used by CustomerService.
type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	Search(ctx context.Context, phone, name string, limit int) ([]model.Customer, error)
	Visits(ctx context.Context, customerID string, limit int) ([]repository.Visit, error)
}

// CustomerTickets lists the tickets of a customer.
type CustomerTickets interface {
	ListByCustomer(ctx context.Context, customerID string) ([]model.CustomerTicket, error)
}

// CustomerService is the customer CRM.
type CustomerService struct {
	customers CustomerStore
	tickets   CustomerTickets
}

// NewCustomerService returns a CustomerService.
func NewCustomerService(customers CustomerStore, tickets CustomerTickets) *CustomerService {
	return &CustomerService{customers: customers, tickets: tickets}
}

// Create registers a customer.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	c, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// CustomerWithTickets is a customer and every ticket they own.
type CustomerWithTickets struct {
	model.Customer
	Tickets []model.CustomerTicket `json:"tickets"`
}

// Get returns a customer with their tickets.
func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerWithTickets, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []model.CustomerTicket{}
	}
	return &CustomerWithTickets{Customer: *c, Tickets: tickets}, nil
}

// Search looks customers up by a free-text query.  A query that parses
// as a phone number is matched on the normalized number as well as on
// names.
func (s *CustomerService) Search(ctx context.Context, q string, limit int) ([]model.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalidInput("query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	phone, err := NormalizePhone(q)
	if err != nil {
		phone = ""
	}
	return s.customers.Search(ctx, phone, q, limit)
}

// Visits returns the visit history of a customer.
func (s *CustomerService) Visits(ctx context.Context, id string, limit int) ([]repository.Visit, error) {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.customers.Visits(ctx, id, limit)
}
