package admin

import (
	"context"
	"errors"
	"maps"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/codec"
)

type handlers struct {
	runner chain.Runner
	params chain.Config
	log    *zap.Logger
}

// Status is the body of GET /chain and of every mutating response.
type Status struct {
	OpID   string           `json:"opId,omitempty"`
	Chain  string           `json:"chain"`
	State  string           `json:"state"`
	Links  []chain.LinkInfo `json:"links"`
	Error  string           `json:"error,omitempty"`
	Failed *FailedLink      `json:"failed,omitempty"`
	Count  int              `json:"released,omitempty"`
}

// FailedLink identifies the link that stopped a run.
type FailedLink struct {
	Level    int    `json:"level"`
	Name     string `json:"name,omitempty"`
	Panicked bool   `json:"panicked"`
}

// passRequest is the optional body of run and reset.
type passRequest struct {
	Params map[string]string `json:"params"`
}

func (h *handlers) status(opID string) Status {
	reg := h.runner.Registry()
	return Status{OpID: opID, Chain: reg.Name(), State: reg.State().String(), Links: reg.Snapshot()}
}

func (h *handlers) describe(w http.ResponseWriter, _ *http.Request) {
	codec.Write(w, http.StatusOK, h.status(""))
}

func (h *handlers) config(r *http.Request) (chain.Config, error) {
	var req passRequest
	if err := codec.Decode(r.Body, &req); err != nil {
		return nil, err
	}
	cfg := chain.Config{}
	maps.Copy(cfg, h.params)
	maps.Copy(cfg, req.Params)
	return cfg, nil
}

func (h *handlers) run(w http.ResponseWriter, r *http.Request) {
	h.pass(w, r, "run", h.runner.Run)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	h.pass(w, r, "reset", h.runner.Reset)
}

func (h *handlers) pass(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, chain.Config) error) {
	cfg, err := h.config(r)
	if err != nil {
		codec.Write(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	opID := uuid.NewString()
	log := h.log.With(zap.String("opId", opID), zap.String("op", op))

	err = fn(r.Context(), cfg)
	st := h.status(opID)
	var le *chain.LinkError
	switch {
	case err == nil:
		log.Info("admin pass done")
		codec.Write(w, http.StatusOK, st)
	case errors.Is(err, chain.ErrNotReady), errors.Is(err, chain.ErrPermanentFailure):
		log.Warn("admin pass refused", zap.Error(err))
		st.Error = err.Error()
		codec.Write(w, http.StatusConflict, st)
	case errors.As(err, &le):
		log.Error("admin pass failed", zap.Error(err))
		st.Error = err.Error()
		st.Failed = &FailedLink{Level: le.Level, Name: le.Name, Panicked: le.Panicked}
		codec.Write(w, http.StatusUnprocessableEntity, st)
	default:
		log.Error("admin pass failed", zap.Error(err))
		st.Error = err.Error()
		codec.Write(w, http.StatusInternalServerError, st)
	}
}

func (h *handlers) release(w http.ResponseWriter, _ *http.Request) {
	n := h.runner.Release()
	opID := uuid.NewString()
	h.log.Info("admin release", zap.String("opId", opID), zap.Int("links", n))
	st := h.status(opID)
	st.Count = n
	codec.Write(w, http.StatusOK, st)
}
