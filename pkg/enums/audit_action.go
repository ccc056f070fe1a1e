package enums

// AuditAction labels an order status audit event.
type AuditAction string

const (
	AuditActionPlaced     AuditAction = "placed"
	AuditActionTransition AuditAction = "transition"
	AuditActionForced     AuditAction = "forced"
	AuditActionDeleted    AuditAction = "deleted"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}
