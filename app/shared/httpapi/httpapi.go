// Package httpapi holds the JSON request/response helpers shared by the HTTP handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string              `json:"error"`
	Prompt *undoservice.Prompt `json:"prompt,omitempty"`
}

// ReadJSON decodes a single JSON value from the request body into dst.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", typeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// WriteJSON writes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// WritePrompt answers 428 with the prompt the operator has to approve before retrying
// with ?confirm=true.
func WritePrompt(w http.ResponseWriter, p undoservice.Prompt) {
	WriteJSON(w, http.StatusPreconditionRequired, ErrorBody{Error: "confirmation required", Prompt: &p})
}

// WriteInternal logs err and writes a 500 without leaking details.
func WriteInternal(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	WriteError(w, http.StatusInternalServerError, msg)
}

// Confirmed reports whether the request carries ?confirm=true.
func Confirmed(r *http.Request) bool {
	ok, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && ok
}

// QueryConfirmer approves prompts only when the request carries ?confirm=true.
func QueryConfirmer(r *http.Request) undoservice.Confirmer {
	confirmed := Confirmed(r)
	return undoservice.ConfirmerFunc(func(context.Context, undoservice.Prompt) (bool, error) {
		return confirmed, nil
	})
}

// Scope reads the {scope} URL parameter.
func Scope(r *http.Request) (sharedtypes.Scope, error) {
	scope := sharedtypes.Scope(chi.URLParam(r, "scope"))
	if !scope.Valid() {
		return "", errors.New("missing scope")
	}
	return scope, nil
}

// RoundID reads the {roundID} URL parameter.
func RoundID(r *http.Request) (sharedtypes.RoundID, error) {
	return sharedtypes.ParseRoundID(chi.URLParam(r, "roundID"))
}

// Limit reads ?limit= with a default and an upper bound.
func Limit(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
