package http

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"intellitest/internal/app"
)

type WSHandler struct {
	service  *app.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
}

type gotoPayload struct {
	Position int `json:"position"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type wsError struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one session: the
// client sends navigation and answers, the server pushes state, ticks and the
// result.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[wsError]{Type: "error", Payload: wsError{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				glog.V(1).Infof("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					// session was reset; make the reader loop end too
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-eventsDone:
		}
	}
	fail := func(err error) {
		reply(outboundMessage[any]{Type: "error", Payload: wsError{Message: err.Error()}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		ctx := r.Context()
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: "error", Payload: wsError{Message: "invalid select payload"}})
				continue
			}
			snap, err := h.service.SelectAnswer(ctx, sessionID, payload.Position, payload.Value)
			if err != nil {
				fail(err)
				continue
			}
			reply(outboundMessage[any]{Type: "state", Payload: snap})
		case "goto":
			var payload gotoPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: "error", Payload: wsError{Message: "invalid goto payload"}})
				continue
			}
			snap, err := h.service.GoTo(ctx, sessionID, payload.Position)
			if err != nil {
				fail(err)
				continue
			}
			reply(outboundMessage[any]{Type: "state", Payload: snap})
		case "next", "prev":
			move := h.service.Next
			if inbound.Type == "prev" {
				move = h.service.Prev
			}
			snap, err := move(ctx, sessionID)
			if err != nil {
				fail(err)
				continue
			}
			reply(outboundMessage[any]{Type: "state", Payload: snap})
		case "submit":
			// the result arrives as a "submitted" event
			if _, err := h.service.Submit(ctx, sessionID); err != nil {
				fail(err)
			}
		default:
			reply(outboundMessage[any]{Type: "error", Payload: wsError{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}
