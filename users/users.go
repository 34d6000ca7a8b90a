package users

import (
	"golang.org/x/crypto/bcrypt"
)

// Collection is the records collection that holds users, keyed by email.
const Collection = "users"

type User struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	StreetAddress    string `json:"street_address"`
	PasswordHash     string `json:"hashed_password"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	StripeCardID     string `json:"stripe_card_id,omitempty"`
}

// Public is the user as shown to its owner, without the password hash.
type Public struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	StreetAddress    string `json:"street_address"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	StripeCardID     string `json:"stripe_card_id,omitempty"`
}

func (u User) Public() Public {
	return Public{
		Name:             u.Name,
		Email:            u.Email,
		StreetAddress:    u.StreetAddress,
		StripeCustomerID: u.StripeCustomerID,
		StripeCardID:     u.StripeCardID,
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
