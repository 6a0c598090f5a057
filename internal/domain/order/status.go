// internal/domain/order/status.go
package order

// Status is the order lifecycle code.
//
// Any status value may be written directly (administrative override); there is
// no enforced forward-only transition. Text() is the display projection.
type Status int

const (
	StatusPending   Status = 0
	StatusInProcess Status = 1
	StatusDone      Status = 2
)

func (s Status) Text() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusInProcess:
		return "IN PROCESS"
	case StatusDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// ValidStatus reports whether n is a defined status code.
// Used by the transport layer to reject out-of-range payload values.
func ValidStatus(n int) bool {
	return n >= int(StatusPending) && n <= int(StatusDone)
}
