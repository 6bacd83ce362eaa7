package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"deliverydash/internal/infrastructure"
	"deliverydash/pkg/contracts/events"
)

// sendBuffer is the per client queue of outbound messages
const sendBuffer = 16

// Hub maintains the set of connected pages and pushes reload notices to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger  *slog.Logger
	metrics *infrastructure.Metrics

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.Metrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub loop. It returns once Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			ctx := client.context()
			connected, err := encode(events.MessageTypeConnect, events.ConnectionInfo{
				ClientID: client.id,
				Status:   "connected",
			}, client.traceID)
			if err != nil {
				h.logger.ErrorContext(ctx, "Error marshaling connection message", slog.String("error", err.Error()))
			}

			h.mu.Lock()
			if !h.running {
				close(client.send)
				h.mu.Unlock()
				continue
			}
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			queued := connected == nil
			if connected != nil {
				select {
				case client.send <- connected:
					queued = true
				default:
				}
			}
			h.mu.Unlock()

			h.metrics.RecordWebSocketClients(ctx, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			if !queued {
				h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
					slog.String("client_id", client.id))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := client.context()
				h.metrics.RecordWebSocketClients(ctx, -1)
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			sent, slow := h.deliver(message)

			// a page that cannot keep up is disconnected; it reloads on reconnect
			dropped := 0
			for _, client := range slow {
				h.mu.Lock()
				_, ok := h.clients[client]
				if ok {
					delete(h.clients, client)
					close(client.send)
				}
				h.mu.Unlock()
				if ok {
					dropped++
					h.metrics.RecordWebSocketClients(client.context(), -1)
				}
			}

			h.mu.Lock()
			h.messagesSent += int64(sent)
			h.mu.Unlock()

			h.logger.Debug("Broadcast delivered",
				slog.Int("sent", sent),
				slog.Int("dropped", dropped),
				slog.Int("message_size", len(message)))
			if dropped > 0 {
				h.logger.Warn("Some clients failed to receive broadcast",
					slog.Int("success_count", sent),
					slog.Int("fail_count", dropped))
			}
		}
	}
}

// deliver queues message for every client. The read lock is held across the
// sends so Stop cannot close a queue underneath them. Clients whose queue is
// full are returned.
func (h *Hub) deliver(message []byte) (int, []*Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- message:
			sent++
		default:
			slow = append(slow, client)
		}
	}
	return sent, slow
}

// BroadcastDatasetChanged tells every page that the dataset file changed
func (h *Hub) BroadcastDatasetChanged(ctx context.Context, change events.DatasetChanged) {
	h.Broadcast(ctx, events.MessageTypeDatasetChanged, change)
}

// Broadcast sends a message of the given type to every client. It returns
// without sending once the hub is stopped.
func (h *Hub) Broadcast(ctx context.Context, messageType events.MessageType, data interface{}) {
	message, err := encode(messageType, data, infrastructure.GetTraceID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(messageType)))
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.quit:
	case <-ctx.Done():
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns connection counters for logging
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
	}
}

// Stop ends the hub loop and closes every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	h.metrics.RecordWebSocketClients(context.Background(), -int64(count))
	h.logger.Info("Hub stopped", slog.Int("closed_clients", count))
}

func encode(messageType events.MessageType, data interface{}, traceID string) ([]byte, error) {
	msg := events.NewMessage(messageType, data)
	msg.TraceID = traceID
	return json.Marshal(msg)
}
