package types

type RegisterRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=8"`
    Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
    Name        string `json:"name" validate:"required"`
    Description string `json:"description"`
}

type ProjectUpdateRequest struct {
    Description *string `json:"description"`
    Archived    *bool   `json:"archived"`
}

type GenerationCreateRequest struct {
    Prompt string `json:"prompt" validate:"required,min=1,max=8000"`
}
