package config

type PaymentConfig interface {
	GetStripeBaseURL() string
	GetStripeSecretKey() string
	GetCurrency() string
}

type MailConfig interface {
	GetMailgunBaseURL() string
	GetMailgunDomain() string
	GetMailgunAPIKey() string
	GetMailFrom() string
}

type Payments struct {
	src *source
}

var _ PaymentConfig = Payments{}

func (p Payments) GetStripeBaseURL() string {
	return p.src.get("STRIPE_BASE_URL", "https://api.stripe.com")
}

func (p Payments) GetStripeSecretKey() string {
	return p.src.get("STRIPE_SECRET_KEY", "")
}

func (p Payments) GetCurrency() string {
	return p.src.get("CURRENCY", "usd")
}

type Mail struct {
	src *source
}

var _ MailConfig = Mail{}

func (m Mail) GetMailgunBaseURL() string {
	return m.src.get("MAILGUN_BASE_URL", "https://api.mailgun.net")
}

func (m Mail) GetMailgunDomain() string {
	return m.src.get("MAILGUN_DOMAIN", "")
}

func (m Mail) GetMailgunAPIKey() string {
	return m.src.get("MAILGUN_API_KEY", "")
}

func (m Mail) GetMailFrom() string {
	return m.src.get("MAIL_FROM", "Pizza Delivery <no-reply@pizza.local>")
}
