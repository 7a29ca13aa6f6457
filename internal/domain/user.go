package domain

import "time"

// Address принадлежит ровно одному пользователю.
type Address struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"-"`
	Street   string `json:"street"`
	Number   string `json:"number"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// User — учётная запись с уникальным email и опциональным адресом.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Address   *Address  `json:"address,omitempty"`
}

// AddressPatch — частичное обновление адреса; nil-поля не трогаются.
type AddressPatch struct {
	Street   *string
	Number   *string
	District *string
	City     *string
	State    *string
	ZipCode  *string
}

// UserPatch — частичное обновление пользователя, включая вложенный адрес.
type UserPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	Address  *AddressPatch
}
