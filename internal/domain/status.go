package domain

import "fmt"

// StatusKind is the closed set of backend status classifications. Every
// table entry carries a kind, so an unhandled code is an explicit
// KindUnknown rather than a silently reused fallback string.
type StatusKind int

const (
	KindOK StatusKind = iota
	KindWarning
	KindGeneralFailure
	KindInvalidMethod
	KindInvalidData
	KindNotFound
	KindAccessDenied
	KindDeviceRejected
	KindLoginFailed
	KindSessionExpired
	KindEntityUnknown
	KindPaymentRejected
	KindInternal
	KindMaintenance
	KindUnknown
)

const (
	StatusOK             = 0
	StatusInvalidData    = -3
	StatusSessionExpired = -13
)

type statusEntry struct {
	kind    StatusKind
	message string
}

// The backend's documented status range is roughly -1000..8. Code 0 is
// success, negative codes are failures, small positive codes are
// accepted-with-warning conditions.
var statusTable = map[int]statusEntry{
	0:     {KindOK, "ok"},
	1:     {KindWarning, "accepted with warnings"},
	8:     {KindWarning, "request queued"},
	-1:    {KindGeneralFailure, "operation failed"},
	-2:    {KindInvalidMethod, "unknown method"},
	-3:    {KindInvalidData, "invalid data"},
	-4:    {KindNotFound, "record not found"},
	-5:    {KindAccessDenied, "access denied"},
	-10:   {KindDeviceRejected, "device not registered"},
	-11:   {KindLoginFailed, "invalid login or PIN"},
	-12:   {KindLoginFailed, "login rejected"},
	-13:   {KindSessionExpired, "session expired, please log in again"},
	-14:   {KindEntityUnknown, "unknown entity"},
	-100:  {KindInternal, "internal backend error"},
	-1000: {KindMaintenance, "backend under maintenance"},
}

const supportSuffix = ", please contact support"

// ClassifyStatus maps a backend status code onto its kind.
func ClassifyStatus(code int) StatusKind {
	if entry, ok := statusTable[code]; ok {
		return entry.kind
	}
	return KindUnknown
}

// StatusMessage renders the human-readable message for a status code.
// Every negative code except -13 (expired session, which triggers the
// automatic re-login instead) gets the contact-support suffix; codes
// outside the table fall back to a generic message carrying the code.
func StatusMessage(code int) string {
	entry, ok := statusTable[code]
	if !ok {
		if code < 0 {
			return fmt.Sprintf("unknown error (code %d)%s", code, supportSuffix)
		}
		return fmt.Sprintf("unknown error (code %d)", code)
	}

	if code < 0 && code != StatusSessionExpired {
		return entry.message + supportSuffix
	}
	return entry.message
}

// StatusOKCode reports whether a code counts as success. Positive codes
// are warnings, not failures.
func StatusOKCode(code int) bool {
	return code >= 0
}
