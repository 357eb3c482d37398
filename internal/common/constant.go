package common

// Header names sent to the PostgREST endpoint.
const (
	APIKeyHeaderName   = "apikey"
	DeviceIDHeaderName = "x-device-id"
)

// Keys of the local metadata store.
const (
	DeviceIDKey = "deviceId"
	MessagesKey = "messages"
	ProfileKey  = "profile"
)

// UnknownRecipient replaces a missing recipient in remote rows.
const UnknownRecipient = "未知"
