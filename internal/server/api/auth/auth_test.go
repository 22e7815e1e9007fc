package auth_test

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/server/api/auth"
)

func TestGenerateKey(t *testing.T) {
	k1, err := auth.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, k1, auth.AutoGenKeyLength)
	for _, c := range k1 {
		assert.Contains(t, auth.Base62Chars, string(c))
	}

	k2, err := auth.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2, "two generated keys should differ")
}

func TestDeriveKey(t *testing.T) {
	key, err := auth.DeriveKey("hunter2")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := auth.DeriveKey("hunter2")
	require.NoError(t, err)
	assert.Equal(t, key, again, "derivation must be deterministic")

	other, err := auth.DeriveKey("hunter3")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	_, err = auth.DeriveKey("")
	assert.Error(t, err)
}

func TestDeriveSessionKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 32)
	sn := bytes.Repeat([]byte{0x02}, auth.NonceSize)
	cn := bytes.Repeat([]byte{0x03}, auth.NonceSize)

	s1 := auth.DeriveSessionKey(key, sn, cn)
	assert.Len(t, s1, 32)
	assert.Equal(t, s1, auth.DeriveSessionKey(key, sn, cn))
	assert.NotEqual(t, s1, auth.DeriveSessionKey(key, cn, sn), "nonce order matters")
}

func TestHandshakeRoundTrip(t *testing.T) {
	key, err := auth.DeriveKey("correct horse")
	require.NoError(t, err)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type result struct {
		clientNonce, serverNonce []byte
		err                      error
	}
	srvCh := make(chan result, 1)
	go func() {
		r := bufio.NewReader(serverConn)
		cn, sn, err := auth.HandleAuthHandshake(r, serverConn, key, false)
		srvCh <- result{cn, sn, err}
	}()

	cr := bufio.NewReader(clientConn)
	cn, sn, err := auth.HandleAuthHandshake(cr, clientConn, key, true)
	require.NoError(t, err)

	srv := <-srvCh
	require.NoError(t, srv.err)
	assert.Equal(t, cn, srv.clientNonce)
	assert.Equal(t, sn, srv.serverNonce)

	// Both ends derive the same session key.
	assert.Equal(t,
		auth.DeriveSessionKey(key, sn, cn),
		auth.DeriveSessionKey(key, srv.serverNonce, srv.clientNonce))
}

func TestHandshakeRejectsWrongPassword(t *testing.T) {
	serverKey, err := auth.DeriveKey("right")
	require.NoError(t, err)
	clientKey, err := auth.DeriveKey("wrong")
	require.NoError(t, err)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		r := bufio.NewReader(serverConn)
		_, _, err := auth.HandleAuthHandshake(r, serverConn, serverKey, false)
		var apiErr apitypes.ApiError
		if assert.ErrorAs(t, err, &apiErr) {
			assert.Equal(t, 401, apiErr.Status)
		}
		serverConn.Close()
	}()

	cr := bufio.NewReader(clientConn)
	_, _, err = auth.HandleAuthHandshake(cr, clientConn, clientKey, true)
	assert.Error(t, err)
}

func TestIsAuthHandshake(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString(auth.HandshakeMagic + "rest"))
	ok, err := auth.IsAuthHandshake(r)
	require.NoError(t, err)
	assert.True(t, ok)

	r = bufio.NewReader(bytes.NewBufferString("controller/list\x00"))
	ok, err = auth.IsAuthHandshake(r)
	require.NoError(t, err)
	assert.False(t, ok)

	// Peeking must not consume the stream.
	line, err := r.ReadString('\x00')
	require.NoError(t, err)
	assert.Equal(t, "controller/list\x00", line)
}

func TestHandshakeMissingKey(t *testing.T) {
	r := bufio.NewReader(bytes.NewBuffer(nil))
	_, _, err := auth.HandleAuthHandshake(r, io.Discard, nil, true)
	assert.Error(t, err)
}
