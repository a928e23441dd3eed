// Package chatpb holds the gophchat gRPC contract generated from
// proto/gophchat/chat.proto, plus conversions to the domain model.
package chatpb

//go:generate protoc -I ../../../../proto --go_out=../../../.. --go_opt=module=github.com/dtroode/gophchat --go-grpc_out=../../../.. --go-grpc_opt=module=github.com/dtroode/gophchat gophchat/chat.proto

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
)

// NewPublicKey converts a key to its JWK message. A nil key gives nil.
func NewPublicKey(key *crypto.PublicKey) (*PublicKey, error) {
	if key == nil {
		return nil, nil
	}
	out := &PublicKey{}
	if err := protojson.Unmarshal([]byte(key.String()), out); err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	return out, nil
}

// Crypto parses the JWK as a P-256 key.
func (x *PublicKey) Crypto() (*crypto.PublicKey, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: missing public key", crypto.ErrInvalidKey)
	}
	data, err := protojson.Marshal(x)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	return crypto.ParsePublicKey(string(data))
}

// NewEnvelope converts a stored envelope to its message.
func NewEnvelope(env model.Envelope) *Envelope {
	return &Envelope{
		Id:         env.ID.String(),
		Sender:     env.From,
		Recipient:  env.To,
		CipherText: env.CipherText,
		Iv:         env.IV,
		Timestamp:  timestamppb.New(env.CreatedAt),
	}
}

// Model converts the message back to an envelope.
func (x *Envelope) Model() (model.Envelope, error) {
	id, err := uuid.Parse(x.GetId())
	if err != nil {
		return model.Envelope{}, fmt.Errorf("%w: envelope id: %v", model.ErrInvalidArgument, err)
	}
	return model.Envelope{
		ID:         id,
		From:       x.GetSender(),
		To:         x.GetRecipient(),
		CipherText: x.GetCipherText(),
		IV:         x.GetIv(),
		CreatedAt:  x.GetTimestamp().AsTime(),
	}, nil
}
