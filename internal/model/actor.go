package model

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// Actor is the authenticated caller identity, resolved once by the auth
// middleware and passed explicitly into every service operation.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

func (a Actor) Known() bool {
	return a.UserID != ""
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}
