package model

// ClaimCategory — категория расходов в заявке на возмещение.
type ClaimCategory struct {
	ID    string
	Title string
}

// ClaimCategories — фиксированный набор категорий расходов.
var ClaimCategories = []ClaimCategory{
	{ID: "transport", Title: "🚕 Транспорт"},
	{ID: "meals", Title: "🍽 Питание"},
	{ID: "office", Title: "🖇 Офис и канцелярия"},
	{ID: "travel", Title: "✈️ Командировки"},
	{ID: "other", Title: "📦 Прочее"},
}

// ClaimCategoryByID возвращает категорию по идентификатору.
func ClaimCategoryByID(id string) (ClaimCategory, bool) {
	for _, c := range ClaimCategories {
		if c.ID == id {
			return c, true
		}
	}
	return ClaimCategory{}, false
}

// Role — роль сотрудника, выбираемая при регистрации.
type Role struct {
	ID    string
	Title string
}

// Roles — допустимые роли сотрудника.
var Roles = []Role{
	{ID: "courier", Title: "🛵 Курьер"},
	{ID: "manager", Title: "💼 Менеджер"},
	{ID: "accountant", Title: "🧮 Бухгалтер"},
	{ID: "other", Title: "👤 Другое"},
}

// RoleByID возвращает роль по идентификатору.
func RoleByID(id string) (Role, bool) {
	for _, r := range Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}
