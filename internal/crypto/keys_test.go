package crypto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKey_JWKRoundTrip(t *testing.T) {
	t.Parallel()

	priv, err := GenerateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	parsed, err := ParsePublicKey(pub.String())
	require.NoError(t, err)
	assert.True(t, pub.Equal(parsed))
	assert.Equal(t, pub.Fingerprint(), parsed.Fingerprint())

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(pub.String()), &fields))
	assert.Equal(t, "EC", fields["kty"])
	assert.Equal(t, "P-256", fields["crv"])
	assert.NotContains(t, fields, "d")
}

func TestPublicKey_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	priv, _ := GenerateKey()
	pub := priv.PublicKey()

	asObject, err := json.Marshal(pub)
	require.NoError(t, err)
	asString, err := json.Marshal(pub.String())
	require.NoError(t, err)

	for name, data := range map[string][]byte{"object": asObject, "string": asString} {
		var got PublicKey
		require.NoError(t, json.Unmarshal(data, &got), name)
		assert.True(t, pub.Equal(&got), name)
	}

	var bad PublicKey
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"kty":"EC","crv":"P-256","x":"AA","y":"AA"}`), &bad), ErrInvalidKey)
}

func TestParsePublicKey_Invalid(t *testing.T) {
	t.Parallel()

	priv, _ := GenerateKey()
	var valid jwk
	require.NoError(t, json.Unmarshal([]byte(priv.PublicKey().String()), &valid))

	offCurve := valid
	offCurve.Y = valid.X

	wrongCurve := valid
	wrongCurve.Crv = "P-384"

	mustJSON := func(j jwk) string {
		b, _ := json.Marshal(j)
		return string(b)
	}

	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: "not a key"},
		{name: "empty object", in: "{}"},
		{name: "wrong curve", in: mustJSON(wrongCurve)},
		{name: "point not on curve", in: mustJSON(offCurve)},
		{name: "okp key", in: `{"kty":"OKP","crv":"X25519","x":"AAAA"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePublicKey(tt.in)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestPrivateKey_JWKRoundTrip(t *testing.T) {
	t.Parallel()

	priv, err := GenerateKey()
	require.NoError(t, err)

	data, err := priv.MarshalJWK()
	require.NoError(t, err)

	restored, err := ParsePrivateJWK(data)
	require.NoError(t, err)
	assert.Equal(t, priv.Bytes(), restored.Bytes())
	assert.True(t, priv.PublicKey().Equal(restored.PublicKey()))

	_, err = ParsePrivateJWK([]byte(priv.PublicKey().String()))
	assert.ErrorIs(t, err, ErrInvalidKey)

	other, _ := GenerateKey()
	var mismatched jwk
	require.NoError(t, json.Unmarshal(data, &mismatched))
	var otherPub jwk
	require.NoError(t, json.Unmarshal([]byte(other.PublicKey().String()), &otherPub))
	mismatched.X, mismatched.Y = otherPub.X, otherPub.Y
	bad, _ := json.Marshal(mismatched)
	_, err = ParsePrivateJWK(bad)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPublicKey_EqualNil(t *testing.T) {
	t.Parallel()

	var a, b *PublicKey
	assert.True(t, a.Equal(b))

	priv, _ := GenerateKey()
	assert.False(t, priv.PublicKey().Equal(nil))
}
