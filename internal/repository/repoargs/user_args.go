package repoargs

import "github.com/dinebook/dinebook/internal/domain"

type CreateUser struct {
	Username string
	Password string
	Role     domain.RoleType
}
