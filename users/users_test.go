package users_test

import (
	"encoding/json"
	"testing"

	"github.com/RenanGalvao/pizza-ecommerce/users"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("margherita")
	require.NoError(t, err)
	require.NotEqual(t, "margherita", hash)

	u := users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("margherita"))
	require.False(t, u.CheckPassword("pepperoni"))
}

func TestPublicOmitsHash(t *testing.T) {
	u := users.User{Name: "Ana", Email: "ana@pizza.com", PasswordHash: "secret-hash", StripeCustomerID: "cus_1"}

	data, err := json.Marshal(u.Public())
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret-hash")
	require.JSONEq(t, `{"name":"Ana","email":"ana@pizza.com","street_address":"","stripe_customer_id":"cus_1"}`, string(data))
}
