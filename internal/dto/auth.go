package dto

type RegisterRequestDTO struct {
	Username     string `json:"username" example:"alice"`
	Password     string `json:"password" example:"s3cret"`
	Confirmation string `json:"confirmation" example:"s3cret"`
}

type RegisterResponseDTO struct {
	Message string `json:"message"`
}

type LoginRequestDTO struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
}
