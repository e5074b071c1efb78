package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
		wantErr  bool
	}{
		{"join frame", `{"type":"join","payload":{"spaceId":"s1","token":"t"}}`, TypeJoin, false},
		{"unknown type still decodes", `{"type":"teleport","payload":{}}`, "teleport", false},
		{"missing payload", `{"type":"leave"}`, TypeLeave, false},
		{"not json", `hello`, "", true},
		{"wrong envelope shape", `[1,2,3]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, env.Type)
		})
	}
}

func TestBind(t *testing.T) {
	env, err := Decode([]byte(`{"type":"move","payload":{"x":96,"y":64}}`))
	require.NoError(t, err)

	var p MovePayload
	require.NoError(t, env.Bind(&p))
	assert.Equal(t, 96, p.X)
	assert.Equal(t, 64, p.Y)

	// Payload of the wrong shape is an error, not a panic.
	env, err = Decode([]byte(`{"type":"move","payload":"sideways"}`))
	require.NoError(t, err)
	assert.Error(t, env.Bind(&p))
}

func TestMarshal(t *testing.T) {
	frame, err := Marshal(TypeChat, Chat{UserID: "alice", Message: "hi", TS: 123})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, TypeChat, env.Type)

	var c Chat
	require.NoError(t, env.Bind(&c))
	assert.Equal(t, "hi", c.Message)
	assert.EqualValues(t, "alice", c.UserID)
	assert.EqualValues(t, 123, c.TS)
}

func TestSignalPayloadOpaqueBodies(t *testing.T) {
	env, err := Decode([]byte(`{"type":"rtc-offer","payload":{"toUserId":"bob","sdp":{"type":"offer","sdp":"v=0\r\n"}}}`))
	require.NoError(t, err)

	var p SignalPayload
	require.NoError(t, env.Bind(&p))
	assert.Equal(t, "bob", p.ToUserID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0\r\n"}`, string(p.SDP))
	assert.Nil(t, p.Candidate)
}
