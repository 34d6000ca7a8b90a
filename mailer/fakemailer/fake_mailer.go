package fakemailer

import (
	"context"
	"sync"

	"github.com/RenanGalvao/pizza-ecommerce/mailer"
)

var (
	_ mailer.Sender   = (*FakeMailer)(nil)
	_ mailer.Receipts = (*FakeMailer)(nil)
)

// FakeMailer records sent messages and serves a fixed receipt body.
type FakeMailer struct {
	Sent       []mailer.Message
	Receipt    string
	SendErr    error
	ReceiptErr error
	lock       sync.Mutex
}

func New() *FakeMailer {
	return &FakeMailer{Receipt: "<html><body>Receipt</body></html>"}
}

func (f *FakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, msg)
	return nil
}

func (f *FakeMailer) Fetch(ctx context.Context, receiptURL string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.ReceiptErr != nil {
		return "", f.ReceiptErr
	}
	return f.Receipt, nil
}

func (f *FakeMailer) Messages() []mailer.Message {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]mailer.Message(nil), f.Sent...)
}
