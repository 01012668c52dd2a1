package access

type AccessState string

const (
	AccessGranted   AccessState = "granted"
	AccessExpired   AccessState = "expired"
	AccessCancelled AccessState = "cancelled"
	AccessNone      AccessState = "none"
)
