package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/server/api/apierror"
)

const (
	HandshakeMagic = "eJC1\x00"
	NonceSize      = 32
	authContext    = "JOYCORE-Auth-v1"
)

// IsAuthHandshake checks if the next bytes in reader match the handshake magic
func IsAuthHandshake(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(HandshakeMagic))
	if err != nil {
		return false, err
	}
	return string(b) == HandshakeMagic, nil
}

// HandleAuthHandshake performs the authentication handshake.
//
// Client sends: magic + client_nonce[32] + HMAC(key, context||client_nonce).
// Server replies: "OK\0" + server_nonce[32], or a problem+json line on
// rejection. Both sides then derive the session key from the nonce pair.
func HandleAuthHandshake(r *bufio.Reader, w io.Writer, key []byte, isClient bool) (clientNonce, serverNonce []byte, err error) {
	if r == nil {
		return nil, nil, fmt.Errorf("handshake: nil reader")
	}
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	if isClient {
		return clientHandshake(r, w, key)
	}
	return serverHandshake(r, w, key)
}

func clientHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if w == nil {
		return nil, nil, fmt.Errorf("handshake: nil writer")
	}
	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	clientAuth := mac.Sum(nil)

	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, clientAuth...)
	if _, err := w.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	respPrefix := make([]byte, 3)
	if _, err := io.ReadFull(r, respPrefix); err != nil {
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(respPrefix) != "OK\x00" {
		// The server rejected us; the rest of the stream is a problem
		// document worth surfacing verbatim.
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(respPrefix, rest...)), "\n")

		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, nil, &apiErr
		}
		return nil, nil, fmt.Errorf("invalid handshake response from server: %s", line)
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

func serverHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if _, err := r.Discard(len(HandshakeMagic)); err != nil {
		return nil, nil, fmt.Errorf("discard handshake magic: %w", err)
	}

	clientNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, nil, fmt.Errorf("read client nonce: %w", err)
	}

	clientAuth := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, clientAuth); err != nil {
		return nil, nil, fmt.Errorf("read client auth: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	if !hmac.Equal(clientAuth, mac.Sum(nil)) {
		return nil, nil, apierror.ErrUnauthorized("invalid password")
	}

	if w == nil {
		return nil, nil, fmt.Errorf("handshake: nil writer")
	}
	serverNonce = make([]byte, NonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		return nil, nil, fmt.Errorf("generate server nonce: %w", err)
	}
	response := append([]byte("OK\x00"), serverNonce...)
	if _, err := w.Write(response); err != nil {
		return nil, nil, fmt.Errorf("write response: %w", err)
	}
	return clientNonce, serverNonce, nil
}
