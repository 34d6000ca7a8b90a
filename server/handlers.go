package server

import (
	"github.com/RenanGalvao/pizza-ecommerce/carts"
	"github.com/RenanGalvao/pizza-ecommerce/internal/config"
	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/internal/utils"
	"github.com/RenanGalvao/pizza-ecommerce/mailer"
	"github.com/RenanGalvao/pizza-ecommerce/menu"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/RenanGalvao/pizza-ecommerce/users"
	"github.com/go-playground/validator/v10"
)

// handlers holds the collaborators every route operation works with.
type handlers struct {
	cfg       config.Config
	users     *records.Collection[users.User]
	menu      *records.Collection[menu.Item]
	carts     *records.Collection[carts.Cart]
	tokens    *token.Manager
	payments  payments.Gateway
	mail      mailer.Sender
	receipts  mailer.Receipts
	validator *validator.Validate
	newID     func(n int) (string, error)
}

func newHandlers(cfg config.Config, store records.Store, locker *records.KeyedLocker, tokens *token.Manager, deps Deps) *handlers {
	return &handlers{
		cfg:       cfg,
		users:     records.NewCollection[users.User](store, users.Collection, locker),
		menu:      records.NewCollection[menu.Item](store, menu.Collection, locker),
		carts:     records.NewCollection[carts.Cart](store, carts.Collection, locker),
		tokens:    tokens,
		payments:  deps.Payments,
		mail:      deps.Mailer,
		receipts:  deps.Receipts,
		validator: newValidator(cfg.GetMenuCategories(), cfg.GetTokenIDLength()),
		newID:     utils.RandomString,
	}
}

// session returns the token attached by RequireSession.
func session(req Request) (*token.Token, error) {
	if req.Token == nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, invalidTokenMessage)
	}
	return req.Token, nil
}

// ignoreNotFound treats a missing record as success, for deletes that may
// race with another request.
func ignoreNotFound(err error) error {
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}
