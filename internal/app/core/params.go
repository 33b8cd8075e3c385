package core

// WaitTime bounds request-scoped operations, in seconds.
const WaitTime = 10

// ValidDeliverySlots are the fixed time-of-day values a delivery order may
// target. A slot must additionally be at least MinSlotLeadMinutes away on the
// same calendar day.
var ValidDeliverySlots = []string{"10:30", "12:45", "15:30", "22:00"}

const MinSlotLeadMinutes = 30

// MinRejectionReasonLen applies to the trimmed rejection reason.
const MinRejectionReasonLen = 10

type ServerParams struct {
	Port       int
	ConfigPath string
}
