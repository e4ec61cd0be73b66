package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/engine"
	"github.com/viant/approvio/tracing"
)

type submitResponse struct {
	Message      string `json:"message"`
	RequestID    string `json:"requestId"`
	ExecutionRef string `json:"executionRef"`
}

type decideRequest struct {
	TaskToken string `json:"taskToken"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
}

// maxBodyBytes caps inbound JSON bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, span := tracing.StartSpan(r.Context(), "server.Submit", "SERVER")
	var payload map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		tracing.EndSpan(span, err)
		return
	}
	var options []engine.SubmitOption
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		if value, ok := payload["idempotencyKey"].(string); ok {
			key = value
			delete(payload, "idempotencyKey")
		}
	}
	if key != "" {
		options = append(options, engine.WithIdempotencyKey(key))
	}

	inst, err := s.engine.Submit(ctx, payload, options...)
	if err != nil {
		s.logger.Error("submit failed", zap.Error(err))
		mapError(w, err)
		tracing.EndSpan(span, err)
		return
	}
	writeJSON(w, http.StatusOK, &submitResponse{
		Message:      "Request submitted successfully",
		RequestID:    inst.ID,
		ExecutionRef: fmt.Sprintf("approvio://executions/%s", inst.ID),
	})
	tracing.EndSpan(span, nil)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, span := tracing.StartSpan(r.Context(), "server.Decide", "SERVER")
	var request decideRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		tracing.EndSpan(span, err)
		return
	}
	if request.TaskToken == "" || request.Decision == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Missing taskToken or decision")
		tracing.EndSpan(span, nil)
		return
	}
	verdict, err := model.ParseVerdict(request.Decision)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "decision must be APPROVED or REJECTED")
		tracing.EndSpan(span, err)
		return
	}

	if _, err = s.engine.Decide(ctx, request.TaskToken, verdict, request.Reason); err != nil {
		mapError(w, err)
		tracing.EndSpan(span, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Request %v successfully", verdict),
	})
	tracing.EndSpan(span, nil)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx, span := tracing.StartSpan(r.Context(), "server.Status", "SERVER")
	inst, err := s.engine.Status(ctx, params.ByName("requestId"))
	if err != nil {
		mapError(w, err)
		tracing.EndSpan(span, err)
		return
	}
	writeJSON(w, http.StatusOK, instanceView(inst))
	tracing.EndSpan(span, nil)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, span := tracing.StartSpan(r.Context(), "server.List", "SERVER")
	var states []model.State
	if value := r.URL.Query().Get("state"); value != "" {
		states = append(states, model.State(value))
	}
	instances, err := s.engine.List(ctx, states...)
	if err != nil {
		mapError(w, err)
		tracing.EndSpan(span, err)
		return
	}
	views := make([]map[string]interface{}, 0, len(instances))
	for _, inst := range instances {
		views = append(views, instanceView(inst))
	}
	writeJSON(w, http.StatusOK, views)
	tracing.EndSpan(span, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	corsHeaders(w)
	w.WriteHeader(http.StatusOK)
}
