package handlers

import (
	"encoding/json"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ToastKind selects the toast colour in the page shell.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// toastEvent is the client event name the page shell listens for.
const toastEvent = "showToast"

// SetToast adds a showToast event to the HX-Trigger response header. Events
// already present in the header are kept; a header that is not a JSON object
// is replaced.
func SetToast(e *core.RequestEvent, kind ToastKind, message string) {
	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			events = map[string]any{}
		}
	}
	events[toastEvent] = map[string]string{
		"message": message,
		"type":    string(kind),
	}

	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// ErrorToast shows message as an error toast and answers with statusCode.
// HX-Reswap: none keeps htmx from swapping the plain-text body into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
