package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"exfield/dataio"
	"exfield/field"
	"exfield/model"
	"exfield/pipeline"
)

// Hub mediates between one websocket client and the pipeline.
type Hub struct {
	cfg  pipeline.Config
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	envSet  chan model.Msg
	started chan model.Msg
	stopped chan model.Msg
}

func NewHub(cfg pipeline.Config) *Hub {
	return &Hub{
		cfg:     cfg,
		msg:     make(chan model.Msg, 10),
		envSet:  make(chan model.Msg, 10),
		started: make(chan model.Msg, 10),
		stopped: make(chan model.Msg, 10),
	}
}

func (h *Hub) handleRequest() {
	for msg := range h.msg {
		switch msg.Type {
		case "env":
			h.envSet <- model.Msg{Type: "envSet", Content: h.describeEnv()}
		case "start":
			h.started <- model.Msg{Type: "started"}
		case "stop":
			h.stopped <- model.Msg{Type: "stopped", Content: "stopped"}
		default:
			log.Warn("no such type: ", msg.Type)
		}
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.envSet:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.Error("write: ", err)
			}
		case reply := <-h.started:
			reply = h.runPipeline(reply)
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.Error("write: ", err)
			}
		case reply := <-h.stopped:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.Error("write: ", err)
			}
		}
	}
}

// runPipeline executes one full run and packs the result (or the failure)
// into the reply.
func (h *Hub) runPipeline(reply model.Msg) model.Msg {
	res, err := pipeline.Run(h.cfg, h.loader())
	if err != nil {
		return model.Msg{Type: "error", Content: err.Error()}
	}
	data, err := json.Marshal(res)
	if err != nil {
		return model.Msg{Type: "error", Content: err.Error()}
	}
	reply.Content = string(data)
	return reply
}

// loader reads the configured input file, or generates a synthetic field
// when no input is configured.
func (h *Hub) loader() pipeline.LoadFunc {
	cfg := h.cfg
	if cfg.Input == "" {
		return func() (*field.Field, error) {
			return dataio.Synthetic(cfg.NX, cfg.NY, cfg.NZ, cfg.NT, 1), nil
		}
	}
	return func() (*field.Field, error) {
		return dataio.ReadField(cfg.Input, cfg.NX, cfg.NY, cfg.NZ, cfg.NT)
	}
}

func (h *Hub) describeEnv() string {
	data, err := json.Marshal(h.cfg)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
