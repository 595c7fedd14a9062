package mapper

import (
	authdto "github.com/AlibekovAA/rhythmix/backend/internal/auth/service/dto"
	userdomain "github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
)

func UserToDTO(user userdomain.User) authdto.User {
	return authdto.User{
		ID:        string(user.ID),
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UsersToDTO(users []userdomain.User) []authdto.User {
	result := make([]authdto.User, len(users))
	for i, u := range users {
		result[i] = UserToDTO(u)
	}
	return result
}
