package models

import "net/url"

const (
	DefaultNickname = "树访客"
	avatarBaseURL   = "https://api.dicebear.com/7.x/avataaars/svg"
)

// UserProfile is the per-device identity shown next to the wall.
// VipExpiry is carried through storage but not consulted by any gate.
type UserProfile struct {
	DeviceID  string `json:"deviceId"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	IsVip     bool   `json:"isVip"`
	VipExpiry *int64 `json:"vipExpiry,omitempty"`
}

// DefaultAvatar returns the generated avatar URI for a device.
func DefaultAvatar(deviceID string) string {
	return avatarBaseURL + "?seed=" + url.QueryEscape(deviceID)
}

// DefaultProfile is the profile a device starts with before any remote
// record exists.
func DefaultProfile(deviceID string) UserProfile {
	return UserProfile{
		DeviceID: deviceID,
		Nickname: DefaultNickname,
		Avatar:   DefaultAvatar(deviceID),
	}
}
