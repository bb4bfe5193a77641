package enums

// ActorRole identifies who is driving an order transition.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleVendor   ActorRole = "vendor"
	ActorRoleAdmin    ActorRole = "admin"
)

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}
