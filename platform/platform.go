package platform

// ResetReason identifies why the device last reset. It mirrors the reset
// causes a real target's reset-reason register can report (ESP-IDF's
// esp_reset_reason_t, a U-Boot bootcount/reset-cause variable, etc.).
type ResetReason int

const (
	// ResetUnknown is reported when the platform cannot determine a cause.
	ResetUnknown ResetReason = iota
	// ResetPowerOn is a normal cold power-on.
	ResetPowerOn
	// ResetExternalPin is a reset asserted via an external reset pin/button.
	ResetExternalPin
	// ResetSoftware is a reset requested by running application code.
	ResetSoftware
	// ResetBrownout is a reset triggered by a supply brownout detector.
	ResetBrownout
	// ResetWatchdogTask is a reset triggered by a task/software watchdog.
	ResetWatchdogTask
	// ResetWatchdogInterrupt is a reset triggered by an interrupt watchdog.
	ResetWatchdogInterrupt
	// ResetPanic is a reset triggered by an unrecovered panic/exception.
	ResetPanic
)

// String implements fmt.Stringer for log-friendly output.
func (r ResetReason) String() string {
	switch r {
	case ResetPowerOn:
		return "power-on"
	case ResetExternalPin:
		return "external-pin"
	case ResetSoftware:
		return "software"
	case ResetBrownout:
		return "brownout"
	case ResetWatchdogTask:
		return "watchdog-task"
	case ResetWatchdogInterrupt:
		return "watchdog-interrupt"
	case ResetPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// OTAState is the per-partition image state a bootloader tracks across OTA
// updates, modeled after ESP-IDF's esp_ota_img_states_t.
type OTAState int

const (
	// OTAUndefined means the bootloader has no state recorded for the slot.
	OTAUndefined OTAState = iota
	// OTANew means the image was written but never booted.
	OTANew
	// OTAPendingVerify means the image booted once and awaits confirmation;
	// the bootloader will revert it on the next reset unless confirmed.
	OTAPendingVerify
	// OTAValid means the image has been confirmed and is trusted.
	OTAValid
	// OTAInvalid means the image has been explicitly marked bad.
	OTAInvalid
	// OTAAborted means an update into this slot was aborted mid-write.
	OTAAborted
)

// String implements fmt.Stringer for log-friendly output.
func (s OTAState) String() string {
	switch s {
	case OTANew:
		return "new"
	case OTAPendingVerify:
		return "pending-verify"
	case OTAValid:
		return "valid"
	case OTAInvalid:
		return "invalid"
	case OTAAborted:
		return "aborted"
	default:
		return "undefined"
	}
}

// Handle identifies one application partition/slot.
type Handle interface {
	// Label is the partition's short identifier, as stored in the
	// partition table.
	Label() string
}

// Platform is the set of primitives the guard consumes but does not
// implement. It is the Go analogue of the original firmware's direct calls
// into esp_system.h / esp_partition.h / esp_ota_ops.h.
type Platform interface {
	// ResetReason reports the cause of the current boot.
	ResetReason() ResetReason

	// FindPartitionByLabel looks up an application partition by its label.
	// The second return value is false if no such partition exists.
	FindPartitionByLabel(label string) (Handle, bool)

	// SetBootPartition redirects the bootloader's next-boot target to h.
	SetBootPartition(h Handle) error

	// RunningPartition returns the handle of the currently executing slot.
	RunningPartition() Handle

	// OTAStateOf reports the OTA image state recorded for h.
	OTAStateOf(h Handle) OTAState

	// MarkValidCancelRollback confirms the running image, canceling any
	// bootloader-side rollback-on-next-reset behavior for it.
	MarkValidCancelRollback() error

	// Restart triggers an immediate hardware reset. On a real target this
	// never returns; callers of any code path that calls Restart must not
	// read local state afterward.
	Restart()

	// MonotonicMillis returns a monotonically increasing millisecond
	// counter that wraps around roughly every 49 days. Callers must use
	// unsigned subtraction to compare two readings.
	MonotonicMillis() uint32
}
