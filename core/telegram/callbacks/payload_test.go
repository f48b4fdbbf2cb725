package callbacks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestPayloadRoundTrip(t *testing.T) {
	cases := []Payload{
		Project(ActionNext, 12, 3, 0),
		Project(ActionPrev, 1, 0, 7),
		Project(ActionDelete, 99, 4, 2),
		Project(ActionApprove, 5, 0, PendingCategory),
		Project(ActionReject, 5, 2, PendingCategory),
		Project(ActionGetDoc, 8, 1, 3),
		Project(ActionGetDoc, math.MaxInt64, math.MaxInt32, PendingCategory),
		Category(0),
		Category(42),
		Menu("moderate"),
	}
	for _, p := range cases {
		t.Run(p.Encode(), func(t *testing.T) {
			data := p.Encode()
			assert.LessOrEqual(t, len(data), MaxDataLen)
			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestEncodeFormat(t *testing.T) {
	assert.Equal(t, "proj:approve:5:0:-1", Project(ActionApprove, 5, 0, PendingCategory).Encode())
	assert.Equal(t, "cat:3", Category(3).Encode())
	assert.Equal(t, "menu:start", Menu("start").Encode())
	assert.True(t, Project(ActionReject, 1, 0, PendingCategory).Pending())
	assert.False(t, Project(ActionNext, 1, 0, 0).Pending())
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]error{
		"":                  ErrUnknownPayload,
		"hello":             ErrUnknownPayload,
		"item:1":            ErrUnknownPayload,
		"proj:fly:1:0:0":    ErrMalformedPayload,
		"proj:next:x:0:0":   ErrMalformedPayload,
		"proj:next:1:y:0":   ErrMalformedPayload,
		"proj:next:1:0:z":   ErrMalformedPayload,
		"proj:next:1:0":     ErrMalformedPayload,
		"proj:next:1:0:0:9": ErrMalformedPayload,
		"cat:abc":           ErrMalformedPayload,
		"cat:":              ErrMalformedPayload,
		"menu:":             ErrMalformedPayload,
		"menu:a:b":          ErrMalformedPayload,
	}
	for data, want := range cases {
		_, err := Decode(data)
		assert.ErrorIs(t, err, want, data)
	}
}

func TestParseCallbackData(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\fmenu|start"})
	assert.Equal(t, "menu", unique)
	assert.Equal(t, "start", payload)

	unique, payload = ParseCallbackData(&tele.Callback{Data: "cat:4"})
	assert.Empty(t, unique)
	assert.Equal(t, "cat:4", payload)

	unique, payload = ParseCallbackData(nil)
	assert.Empty(t, unique)
	assert.Empty(t, payload)
}
