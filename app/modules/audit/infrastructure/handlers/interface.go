package audithandlers

import (
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handlers consumes console activity from the bus and serves it back over HTTP.
type Handlers interface {
	HandleActionRecorded(msg *message.Message) error
	HandleUndoSlotChanged(msg *message.Message) error
	HandleListLogs(w http.ResponseWriter, r *http.Request)
}
