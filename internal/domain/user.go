package domain

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleManager  Role = "MANAGER"
)

// User covers both customers and branch employees. Customers live in the
// customers collection, employees (agents, managers) in employees.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Role      Role      `bson:"role" json:"role"`
	BranchID  string    `bson:"branch_id,omitempty" json:"branch_id,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
