package dto

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendVerificationInput struct {
	Email string `json:"email"`
}
