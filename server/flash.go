package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "bourse_flash"

// flasher carries one-shot messages across a redirect in a signed cookie.
type flasher struct {
	key []byte
}

func (f flasher) sign(msg []byte) []byte {
	mac := hmac.New(sha256.New, f.key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// set stores msg, it is displayed by the next page reading it.
func (f flasher) set(w http.ResponseWriter, msg string) {
	enc := base64.RawURLEncoding
	value := enc.EncodeToString([]byte(msg)) + "." + enc.EncodeToString(f.sign([]byte(msg)))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pop returns the flashed message and clears it. Unsigned or tampered
// messages are dropped.
func (f flasher) pop(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return ""
	}
	enc := base64.RawURLEncoding
	msg, err := enc.DecodeString(payload)
	if err != nil {
		return ""
	}
	mac, err := enc.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, f.sign(msg)) {
		return ""
	}
	return string(msg)
}
