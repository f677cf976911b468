// Package flash queues one-shot messages in the session. A message is shown
// on the next rendered page and then discarded.
package flash

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	successKey = "success"
	errorKey   = "error"
)

// Success queues a success message for the next rendered page.
func Success(c *gin.Context, msg string) {
	add(c, successKey, msg)
}

// Error queues an error message for the next rendered page.
func Error(c *gin.Context, msg string) {
	add(c, errorKey, msg)
}

func add(c *gin.Context, key, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, key)
	save(c, session)
}

func save(c *gin.Context, session sessions.Session) {
	if err := session.Save(); err != nil {
		log.Error("failed to save flash messages", "error", err)
		return
	}
	dedupeSetCookie(c.Writer.Header())
}

// dedupeSetCookie keeps only the newest Set-Cookie header per cookie name.
// Saving the session emits a Set-Cookie header each time, so a request that
// queues several messages would otherwise respond with duplicate same-name
// cookies, which RFC 6265 forbids and clients resolve unpredictably.
func dedupeSetCookie(header http.Header) {
	cookies := header["Set-Cookie"]
	if len(cookies) < 2 {
		return
	}
	last := make(map[string]int, len(cookies))
	for i, cookie := range cookies {
		name, _, _ := strings.Cut(cookie, "=")
		last[name] = i
	}
	deduped := cookies[:0]
	for i, cookie := range cookies {
		name, _, _ := strings.Cut(cookie, "=")
		if last[name] == i {
			deduped = append(deduped, cookie)
		}
	}
	header["Set-Cookie"] = deduped
}

// Drain returns all queued messages and clears them from the session.
func Drain(c *gin.Context) (success, errors []string) {
	session := sessions.Default(c)
	for _, f := range session.Flashes(successKey) {
		if msg, ok := f.(string); ok {
			success = append(success, msg)
		}
	}
	for _, f := range session.Flashes(errorKey) {
		if msg, ok := f.(string); ok {
			errors = append(errors, msg)
		}
	}
	// Flashes removes the messages, save persists the removal.
	save(c, session)
	return success, errors
}
