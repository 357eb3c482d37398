package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
)

// RowID accepts both string and numeric primary keys on the wire.
type RowID string

func (id *RowID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("row id: %w", err)
	}
	*id = RowID(n.String())
	return nil
}

// MessageRow is a row of the messages table. Every column may be absent.
type MessageRow struct {
	ID        *RowID  `json:"id,omitempty"`
	To        *string `json:"to"`
	Content   *string `json:"content"`
	Timestamp *int64  `json:"timestamp"`
	IsPinned  *bool   `json:"is_pinned"`
}

// ProfileRow is a row of the profiles table, keyed by device id.
type ProfileRow struct {
	ID        string  `json:"id"`
	Nickname  *string `json:"nickname"`
	Avatar    *string `json:"avatar"`
	IsVip     *bool   `json:"is_vip"`
	VipExpiry *int64  `json:"vip_expiry"`
}

// decodeMessageRow validates a wire row. A missing recipient becomes
// common.UnknownRecipient and missing content becomes "". Rows without an
// id or timestamp are rejected.
func decodeMessageRow(r MessageRow) (models.Message, error) {
	if r.ID == nil || *r.ID == "" {
		return models.Message{}, fmt.Errorf("message row without id: %w", common.ErrDecode)
	}
	if r.Timestamp == nil {
		return models.Message{}, fmt.Errorf("message %s without timestamp: %w", *r.ID, common.ErrDecode)
	}

	m := models.Message{
		ID:        string(*r.ID),
		To:        common.UnknownRecipient,
		Timestamp: *r.Timestamp,
	}
	if r.To != nil && *r.To != "" {
		m.To = *r.To
	}
	if r.Content != nil {
		m.Content = *r.Content
	}
	if r.IsPinned != nil {
		m.IsPinned = *r.IsPinned
	}
	return m, nil
}

func decodeMessageRows(rows []MessageRow) ([]models.Message, error) {
	out := make([]models.Message, 0, len(rows))
	for i, r := range rows {
		m, err := decodeMessageRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// encodeNewMessage builds an insert row. The id is left to the backend.
func encodeNewMessage(m models.Message) MessageRow {
	return MessageRow{
		To:        &m.To,
		Content:   &m.Content,
		Timestamp: &m.Timestamp,
		IsPinned:  &m.IsPinned,
	}
}

// decodeProfileRow maps a profile row. A null nickname or avatar falls back
// to the defaults derived from the device id.
func decodeProfileRow(r ProfileRow) (models.UserProfile, error) {
	if r.ID == "" {
		return models.UserProfile{}, fmt.Errorf("profile row without id: %w", common.ErrDecode)
	}

	p := models.DefaultProfile(r.ID)
	if r.Nickname != nil {
		p.Nickname = *r.Nickname
	}
	if r.Avatar != nil {
		p.Avatar = *r.Avatar
	}
	if r.IsVip != nil {
		p.IsVip = *r.IsVip
	}
	p.VipExpiry = r.VipExpiry
	return p, nil
}

func encodeProfile(deviceID string, p models.UserProfile) ProfileRow {
	return ProfileRow{
		ID:        deviceID,
		Nickname:  &p.Nickname,
		Avatar:    &p.Avatar,
		IsVip:     &p.IsVip,
		VipExpiry: p.VipExpiry,
	}
}
