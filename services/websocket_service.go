package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	Start()
	Stop()
	HandleConnection(c *gin.Context)
	BroadcastMessage(message []byte)
	SetBrokerChannel(ch chan *nats.Msg)
	SetDisconnectHandler(handler func(userID uuid.UUID))
}

// Client represents a connected WebSocket client
type Client struct {
	ID            string
	UserID        string
	Hub           *WebSocketService
	Conn          *websocket.Conn
	Send          chan []byte
	Subscriptions map[string]bool
}

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type    string          `json:"type"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// WebSocketService fans broker events out to connected clients according
// to their subscription sets.
type WebSocketService struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	broadcast    chan []byte
	clientsMutex sync.RWMutex

	upgrader websocket.Upgrader

	natsURL  string
	subjects []string

	brokerMessages chan *nats.Msg
	consumer       *broker.Consumer

	onDisconnect func(userID uuid.UUID)

	isRunning bool
	stopChan  chan struct{}
}

// NewWebSocketService creates a new WebSocket service listening on the
// given broker subjects.
func NewWebSocketService(natsURL string, subjects []string) *WebSocketService {
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		natsURL:  natsURL,
		subjects: subjects,
		stopChan: make(chan struct{}),
	}
}

// SetBrokerChannel overrides the broker message source. Tests only.
func (ws *WebSocketService) SetBrokerChannel(ch chan *nats.Msg) {
	ws.brokerMessages = ch
}

// SetDisconnectHandler registers a callback invoked when the last
// connection for a user goes away. Must be called before Start.
func (ws *WebSocketService) SetDisconnectHandler(handler func(userID uuid.UUID)) {
	ws.onDisconnect = handler
}

// Start begins the hub and connects the broker consumer.
func (ws *WebSocketService) Start() {
	if ws.isRunning {
		return
	}
	ws.isRunning = true

	if ws.brokerMessages == nil {
		consumer, err := broker.NewConsumer(ws.natsURL, ws.subjects, "websocket-group")
		if err != nil {
			log.Printf("Failed to initialize broker consumer: %v", err)
			log.Println("WebSocket service will run without live events")
			ws.brokerMessages = make(chan *nats.Msg)
		} else {
			ws.consumer = consumer
			ws.brokerMessages = consumer.Messages()
		}
	}

	go ws.run()
	log.Println("WebSocket service started")
}

// Stop gracefully shuts down the WebSocket service
func (ws *WebSocketService) Stop() {
	if !ws.isRunning {
		return
	}
	ws.isRunning = false
	close(ws.stopChan)

	if ws.consumer != nil {
		ws.consumer.Close()
	}

	ws.clientsMutex.Lock()
	for _, client := range ws.clients {
		if client != nil && client.Conn != nil {
			client.Conn.Close()
		}
	}
	ws.clientsMutex.Unlock()

	log.Println("WebSocket service stopped")
}

// BroadcastMessage sends a message to all connected clients
func (ws *WebSocketService) BroadcastMessage(message []byte) {
	ws.broadcast <- message
}

// run handles the main client message hub
func (ws *WebSocketService) run() {
	for {
		select {
		case <-ws.stopChan:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			ws.clients[client.ID] = client
			ws.clientsMutex.Unlock()
			log.Printf("Client connected: %s (user: %s)", client.ID, client.UserID)

		case client := <-ws.unregister:
			ws.clientsMutex.Lock()
			gone := false
			if _, ok := ws.clients[client.ID]; ok {
				delete(ws.clients, client.ID)
				close(client.Send)
				gone = !ws.userConnectedLocked(client.UserID)
				log.Printf("Client disconnected: %s", client.ID)
			}
			ws.clientsMutex.Unlock()

			if gone && ws.onDisconnect != nil {
				if userID, err := uuid.Parse(client.UserID); err == nil {
					go ws.onDisconnect(userID)
				}
			}

		case message := <-ws.broadcast:
			ws.clientsMutex.Lock()
			for _, client := range ws.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(ws.clients, client.ID)
				}
			}
			ws.clientsMutex.Unlock()

		case msg := <-ws.brokerMessages:
			ws.handleBrokerMessage(msg)
		}
	}
}

// HandleConnection upgrades an authenticated request to a WebSocket
// connection. Authentication runs in middleware before this.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	userID := userIDInterface.(uuid.UUID)

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &Client{
		ID:            uuid.New().String(),
		UserID:        userID.String(),
		Hub:           ws,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		Subscriptions: make(map[string]bool),
	}

	ws.register <- client

	go client.readPump()
	go client.writePump()
}

// handleBrokerMessage routes a broker event to subscribed clients. An
// event only reaches clients owning the resource: the actor id on the
// outbox event must match the client's user id.
func (ws *WebSocketService) handleBrokerMessage(msg *nats.Msg) {
	var event models.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("Error parsing broker message: %v", err)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		payload = map[string]interface{}{}
	}

	serverMsg := models.NewStandardMessage(models.EventMessage, event.Event, payload)
	serverMsg.WithResource(event.Entity, resourceIDFromPayload(event.Entity, payload))

	jsonData, err := json.Marshal(serverMsg)
	if err != nil {
		log.Printf("Error serializing server message: %v", err)
		return
	}

	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	for _, client := range ws.clients {
		if event.ActorID != "" && client.UserID != event.ActorID {
			continue
		}
		if !ws.clientSubscribed(client, event.Entity, serverMsg.ResourceID) {
			continue
		}
		select {
		case client.Send <- jsonData:
		default:
			log.Printf("Warning: send buffer full for client %s, dropping event", client.ID)
		}
	}
}

// userConnectedLocked reports whether any remaining client belongs to
// the given user. Caller holds clientsMutex.
func (ws *WebSocketService) userConnectedLocked(userID string) bool {
	for _, client := range ws.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}

func (ws *WebSocketService) clientSubscribed(client *Client, resourceType, resourceID string) bool {
	if client.Subscriptions["all"] {
		return true
	}
	if client.Subscriptions[resourceType] || client.Subscriptions[resourceType+"s"] {
		return true
	}
	if resourceID != "" && client.Subscriptions[resourceType+":"+resourceID] {
		return true
	}
	return false
}

func resourceIDFromPayload(entity string, payload map[string]interface{}) string {
	for _, key := range []string{entity + "_id", "scope_key", "id"} {
		if id, ok := payload[key].(string); ok {
			return id
		}
	}
	return ""
}

// readPump reads client messages: subscribe/unsubscribe requests.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid client message: %v", err)
			continue
		}

		switch models.WebSocketMessageType(msg.Type) {
		case models.SubscribeMessage:
			var payload struct {
				Resource string `json:"resource"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err == nil && payload.Resource != "" {
				c.Subscriptions[payload.Resource] = true
			}
		case models.UnsubscribeMessage:
			var payload struct {
				Resource string `json:"resource"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err == nil {
				delete(c.Subscriptions, payload.Resource)
			}
		}
	}
}

// writePump writes queued messages to the connection.
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

var WebSocketServiceInstance WebSocketServiceInterface
