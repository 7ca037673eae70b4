package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSupplier
}

// 操作しているユーザー。認証は外部で済んでいる前提で、
// usecase の呼び出しごとに明示的に渡す。
type Actor struct {
	UserID     string
	Role       Role
	SupplierID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// サプライヤーとして supplierID の代わりに書き込めるか
func (a Actor) ActsFor(supplierID string) bool {
	return a.Role == RoleSupplier && a.SupplierID != "" && a.SupplierID == supplierID
}

// 所属サプライヤーが分かっているサプライヤーユーザーか
func (a Actor) IsSupplier() bool {
	return a.Role == RoleSupplier && a.SupplierID != ""
}
