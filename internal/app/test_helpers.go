package app

import (
	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// newTestUser создаёт клиента для использования в тестах.
func newTestUser(email string) domain.User {
	return domain.User{
		Name:     "Test Client",
		Email:    email,
		Phone:    "+5547999990000",
		Password: "s3cret",
	}
}

// newTestItem создаёт товар каталога для использования в тестах.
func newTestItem(description string) domain.Item {
	return domain.Item{
		Description: description,
		UnitPrice:   10.0,
	}
}
