package auth

import (
	"fmt"

	"github.com/sigmart/go-order-fulfillment.git/internal/orders"
)

// Role adalah enum tertutup; string role dari luar harus lewat ParseRole.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleStoreAdmin
	RoleSuperAdmin
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "customer", "user":
		return RoleCustomer, nil
	case "store_admin":
		return RoleStoreAdmin, nil
	case "super_admin":
		return RoleSuperAdmin, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleStoreAdmin:
		return "store_admin"
	case RoleSuperAdmin:
		return "super_admin"
	default:
		return "unknown"
	}
}

// CanDrive reports whether the role may request a transition to the target
// status. Customer boleh cancel order miliknya; process/ship khusus admin.
// Ownership check tetap di layer HTTP, bukan di sini.
func CanDrive(r Role, to orders.Status) bool {
	switch to {
	case orders.StatusCancelled:
		switch r {
		case RoleCustomer, RoleStoreAdmin, RoleSuperAdmin:
			return true
		default:
			return false
		}
	case orders.StatusProcessing, orders.StatusShipped:
		switch r {
		case RoleStoreAdmin, RoleSuperAdmin:
			return true
		default:
			return false
		}
	default:
		return false
	}
}
