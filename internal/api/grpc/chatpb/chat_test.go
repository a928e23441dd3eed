package chatpb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
)

func TestPublicKey_RoundTrip(t *testing.T) {
	t.Parallel()

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)

	msg, err := NewPublicKey(priv.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "EC", msg.GetKty())
	assert.Equal(t, "P-256", msg.GetCrv())

	wire, err := proto.Marshal(&Identity{Username: "alice", PublicKey: msg})
	require.NoError(t, err)

	var decoded Identity
	require.NoError(t, proto.Unmarshal(wire, &decoded))
	assert.Equal(t, "alice", decoded.GetUsername())

	got, err := decoded.GetPublicKey().Crypto()
	require.NoError(t, err)
	assert.True(t, priv.PublicKey().Equal(got))
}

func TestPublicKey_Invalid(t *testing.T) {
	t.Parallel()

	nilKey, err := NewPublicKey(nil)
	require.NoError(t, err)
	assert.Nil(t, nilKey)

	_, err = nilKey.Crypto()
	assert.ErrorIs(t, err, crypto.ErrInvalidKey)

	_, err = (&PublicKey{Kty: "EC", Crv: "P-384", X: "AAAA", Y: "AAAA"}).Crypto()
	assert.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestEnvelope_Model(t *testing.T) {
	t.Parallel()

	env := model.Envelope{
		ID:         uuid.New(),
		From:       "alice",
		To:         "bob",
		CipherText: "Y2lwaGVy",
		IV:         "aXY=",
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 500, time.UTC),
	}

	wire, err := proto.Marshal(&GetHistoryResponse{Envelopes: []*Envelope{NewEnvelope(env)}})
	require.NoError(t, err)

	var resp GetHistoryResponse
	require.NoError(t, proto.Unmarshal(wire, &resp))
	require.Len(t, resp.GetEnvelopes(), 1)

	got, err := resp.GetEnvelopes()[0].Model()
	require.NoError(t, err)
	assert.Equal(t, env, got)

	_, err = (&Envelope{Id: "not-a-uuid"}).Model()
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestDescriptor_Services(t *testing.T) {
	t.Parallel()

	services := File_gophchat_chat_proto.Services()
	require.Equal(t, 2, services.Len())

	directory := services.ByName("Directory")
	require.NotNil(t, directory)
	assert.Equal(t, "gophchat.Identity", string(directory.Methods().ByName("GetIdentity").Output().FullName()))

	history := services.ByName("History")
	require.NotNil(t, history)
	assert.Equal(t, "gophchat.GetHistoryResponse", string(history.Methods().ByName("GetHistory").Output().FullName()))
}
