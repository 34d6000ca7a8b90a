package utils_test

import (
	"regexp"
	"testing"

	"github.com/RenanGalvao/pizza-ecommerce/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	re := regexp.MustCompile(`^[a-z0-9]{20}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		s, err := utils.RandomString(20)
		require.NoError(t, err)
		require.Regexp(t, re, s)
		seen[s] = struct{}{}
	}
	require.Len(t, seen, 100)
}

func TestRandomStringRejectsZeroLength(t *testing.T) {
	_, err := utils.RandomString(0)
	require.Error(t, err)
}

func TestValueAndPtr(t *testing.T) {
	var missing *string
	require.Equal(t, "", utils.Value(missing))
	require.Equal(t, 3, utils.Value(utils.Ptr(3)))
}
