package remote

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMessageRow_UnmarshalWireFormat(t *testing.T) {
	data := `[
		{"id": 7, "to": "Alice", "content": "hi", "timestamp": 1700000000000, "is_pinned": true},
		{"id": "a-b-c", "to": null, "content": null, "timestamp": 5, "is_pinned": null}
	]`
	var rows []MessageRow
	require.NoError(t, json.Unmarshal([]byte(data), &rows))

	msgs, err := decodeMessageRows(rows)
	require.NoError(t, err)

	want := []models.Message{
		{ID: "7", To: "Alice", Content: "hi", Timestamp: 1700000000000, IsPinned: true},
		{ID: "a-b-c", To: common.UnknownRecipient, Content: "", Timestamp: 5},
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("decoded messages mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMessageRow_RejectsMissingIDOrTimestamp(t *testing.T) {
	ts := int64(1)
	id := RowID("x")

	_, err := decodeMessageRow(MessageRow{Timestamp: &ts})
	require.ErrorIs(t, err, common.ErrDecode)

	_, err = decodeMessageRow(MessageRow{ID: &id})
	require.ErrorIs(t, err, common.ErrDecode)

	_, err = decodeMessageRows([]MessageRow{{ID: &id, Timestamp: &ts}, {}})
	require.ErrorIs(t, err, common.ErrDecode)
	require.Contains(t, err.Error(), "row 1")
}

func TestEncodeNewMessage_SnakeCaseAndNoID(t *testing.T) {
	row := encodeNewMessage(models.Message{ID: "ignored", To: "Bob", Content: "c", Timestamp: 9})

	b, err := json.Marshal(row)
	require.NoError(t, err)
	require.JSONEq(t, `{"to":"Bob","content":"c","timestamp":9,"is_pinned":false}`, string(b))
}

func TestProfileRow_RoundTrip(t *testing.T) {
	expiry := int64(123)
	p := models.UserProfile{DeviceID: "u_1", Nickname: "n", Avatar: "https://a", IsVip: true, VipExpiry: &expiry}

	row := encodeProfile("u_1", p)
	b, err := json.Marshal(row)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"u_1","nickname":"n","avatar":"https://a","is_vip":true,"vip_expiry":123}`, string(b))

	var back ProfileRow
	require.NoError(t, json.Unmarshal(b, &back))
	got, err := decodeProfileRow(back)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestDecodeProfileRow_Defaults(t *testing.T) {
	got, err := decodeProfileRow(ProfileRow{ID: "u_2"})
	require.NoError(t, err)
	require.Equal(t, models.DefaultProfile("u_2"), got)

	empty := ""
	got, err = decodeProfileRow(ProfileRow{ID: "u_2", Nickname: &empty, Avatar: &empty})
	require.NoError(t, err)
	require.Equal(t, models.UserProfile{DeviceID: "u_2"}, got)

	_, err = decodeProfileRow(ProfileRow{})
	require.ErrorIs(t, err, common.ErrDecode)
}

func TestRowID_Unmarshal(t *testing.T) {
	var id RowID
	require.NoError(t, json.Unmarshal([]byte(`12345678901234`), &id))
	require.Equal(t, RowID("12345678901234"), id)

	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &id))
	require.Equal(t, RowID("abc"), id)

	require.Error(t, json.Unmarshal([]byte(`true`), &id))
}
