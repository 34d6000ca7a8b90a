package config

type TokenConfig interface {
	GetTokenIDLength() int
	GetAccessTokenMaxAge() int
	GetRefreshTokenMaxAge() int
}

type Tokens struct {
	src *source
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetTokenIDLength() int {
	return t.src.getInt("TOKEN_ID_LENGTH", 20)
}

// GetAccessTokenMaxAge is in seconds.
func (t Tokens) GetAccessTokenMaxAge() int {
	return t.src.getInt("ACCESS_TOKEN_MAX_AGE", 15*60)
}

// GetRefreshTokenMaxAge is in seconds.
func (t Tokens) GetRefreshTokenMaxAge() int {
	return t.src.getInt("REFRESH_TOKEN_MAX_AGE", 30*60)
}
