package dto

type IdentityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
