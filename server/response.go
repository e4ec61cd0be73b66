package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
	"github.com/viant/approvio/service/engine"
)

// Machine readable error codes accompanying every error response.
const (
	codeValidation = "validation"
	codeNotFound   = "not_found"
	codeTimedOut   = "timed_out"
	codeInternal   = "internal"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// corsHeaders applies the open cross-origin allow headers every response
// carries.
func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")
	w.Header().Set("Access-Control-Allow-Methods", "OPTIONS,POST,GET")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	corsHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &errorBody{Error: message, Code: code})
}

// mapError translates engine and store error kinds into the documented
// response codes. Endpoints never invent new error semantics.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidation(err):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, dao.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeValidation, "Missing requestId in path")
	case errors.Is(err, engine.ErrUnknownToken):
		writeError(w, http.StatusNotFound, codeNotFound, "Task Token not found or expired")
	case errors.Is(err, engine.ErrDecisionWindowElapsed):
		writeError(w, http.StatusGone, codeTimedOut, "Task Timed Out")
	case errors.Is(err, dao.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "Request not found")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}

// instanceView flattens an instance the way the status table historically
// exposed it: payload fields merged next to the lifecycle fields, numeric
// values already normalized to plain numbers by the model boundary.
func instanceView(inst *model.Instance) map[string]interface{} {
	view := make(map[string]interface{}, len(inst.Payload)+6)
	for key, value := range inst.Payload {
		view[key] = value
	}
	view["requestId"] = inst.ID
	view["status"] = inst.State
	view["requestDate"] = inst.CreatedAt
	if inst.ExpiresAt != nil {
		view["expiresAt"] = inst.ExpiresAt
	}
	if inst.DecidedAt != nil {
		view["decidedAt"] = inst.DecidedAt
	}
	if inst.Result != nil {
		view["result"] = inst.Result
	}
	return view
}
