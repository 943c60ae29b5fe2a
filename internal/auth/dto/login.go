package dto

type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type OAuthLoginInput struct {
	ProviderToken string `json:"provider_token"`
	IPAddress     string `json:"-"`
	UserAgent     string `json:"-"`
}
