package fakegateway

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
)

var _ payments.Gateway = (*FakeGateway)(nil)

// FakeGateway is an in-memory payments.Gateway. Set ChargeErr to make the
// next charges fail.
type FakeGateway struct {
	customers  map[string]payments.Customer
	cards      map[string][]payments.Card
	Charges    []payments.ChargeRequest
	ChargeErr  error
	ReceiptURL string
	seq        int
	lock       sync.Mutex
}

func New() *FakeGateway {
	return &FakeGateway{
		customers: make(map[string]payments.Customer),
		cards:     make(map[string][]payments.Card),
	}
}

func (g *FakeGateway) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

func (g *FakeGateway) CreateCustomer(ctx context.Context, name, email string) (payments.Customer, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	c := payments.Customer{ID: g.nextID("cus"), Name: name, Email: email}
	g.customers[c.ID] = c
	return c, nil
}

func (g *FakeGateway) Customer(id string) (payments.Customer, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	c, ok := g.customers[id]
	return c, ok
}

func (g *FakeGateway) UpdateCustomerEmail(ctx context.Context, customerID, email string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	c, ok := g.customers[customerID]
	if !ok {
		return apperrors.New(apperrors.ErrValidation, "No such customer.")
	}
	c.Email = email
	g.customers[customerID] = c
	return nil
}

func (g *FakeGateway) DeleteCustomer(ctx context.Context, customerID string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.customers[customerID]; !ok {
		return apperrors.New(apperrors.ErrValidation, "No such customer.")
	}
	delete(g.customers, customerID)
	delete(g.cards, customerID)
	return nil
}

func (g *FakeGateway) ListCards(ctx context.Context, customerID string) ([]payments.Card, error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return append([]payments.Card(nil), g.cards[customerID]...), nil
}

func (g *FakeGateway) CreateCard(ctx context.Context, customerID, sourceToken string) (payments.Card, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.customers[customerID]; !ok {
		return payments.Card{}, apperrors.New(apperrors.ErrValidation, "No such customer.")
	}
	c := payments.Card{ID: g.nextID("card"), Object: "card", Brand: sourceToken, Last4: "4242", ExpMonth: 12, ExpYear: 2030, Customer: customerID}
	g.cards[customerID] = append(g.cards[customerID], c)
	return c, nil
}

func (g *FakeGateway) UpdateCard(ctx context.Context, customerID, cardID string, update payments.CardUpdate) (payments.Card, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	for i, c := range g.cards[customerID] {
		if c.ID != cardID {
			continue
		}
		if update.Name != "" {
			c.Name = update.Name
		}
		g.cards[customerID][i] = c
		return c, nil
	}
	return payments.Card{}, apperrors.New(apperrors.ErrValidation, "No such source.")
}

func (g *FakeGateway) DeleteCard(ctx context.Context, customerID, cardID string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	cards := g.cards[customerID]
	for i, c := range cards {
		if c.ID == cardID {
			g.cards[customerID] = append(cards[:i], cards[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.ErrValidation, "No such source.")
}

func (g *FakeGateway) Charge(ctx context.Context, req payments.ChargeRequest) (payments.Charge, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.ChargeErr != nil {
		return payments.Charge{}, g.ChargeErr
	}
	g.Charges = append(g.Charges, req)
	return payments.Charge{ID: g.nextID("ch"), Paid: true, ReceiptURL: g.ReceiptURL}, nil
}
