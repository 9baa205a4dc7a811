package models

// Роли пользователей. Роль задаётся при создании аккаунта и больше не меняется.
const (
	RoleUser       = "user"
	RoleOwner      = "owner"
	RoleDeliverBoy = "deliverBoy"
)

// ValidRoles список допустимых ролей
var ValidRoles = map[string]struct{}{
	RoleUser:       {},
	RoleOwner:      {},
	RoleDeliverBoy: {},
}
