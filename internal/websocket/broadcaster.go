package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/metrics"
)

const (
	tickInterval   = 1 * time.Second
	commandTimeout = 5 * time.Second
)

// StateProvider supplies the current fused emotional state on each tick.
type StateProvider interface {
	Current() domain.FusedState
}

// broadcasterCmd is the command interface for the Broadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseBroadcasterCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
}

type getClientCountCmd struct {
	baseBroadcasterCmd
	replyChannel chan int
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster manages WebSocket connections and pulls the fused state from
// the fusion engine on a tick loop, fanning out to all connected clients
// whenever the state changes.
type Broadcaster struct {
	cmdCh      chan broadcasterCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	provider   StateProvider
	maxClients int
	lastState  *domain.FusedState
	done       chan struct{}
}

// NewBroadcaster creates a new broadcaster and starts its actor goroutine.
// provider is polled on each tick. maxClients caps concurrent connections.
func NewBroadcaster(provider StateProvider, clock clockwork.Clock, maxClients int) *Broadcaster {
	b := &Broadcaster{
		cmdCh:      make(chan broadcasterCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		provider:   provider,
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

// Register adds a client connection. Returns an error if the client cap is
// reached or the broadcaster is stuck.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a client connection.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	select {
	case b.cmdCh <- unregisterCmd{connection: conn}:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case b.cmdCh <- getClientCountCmd{replyChannel: replyCh}:
		return <-replyCh
	case <-b.done:
		return 0
	}
}

// Stop shuts down the broadcaster, closing all client connections.
func (b *Broadcaster) Stop() {
	select {
	case b.cmdCh <- stopCmd{}:
		<-b.done
	case <-b.done:
	}
}

func (b *Broadcaster) run() {
	ticker := b.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-b.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				b.handleRegister(c)
			case unregisterCmd:
				b.handleUnregister(c.connection)
			case getClientCountCmd:
				c.replyChannel <- len(b.clients)
			case stopCmd:
				b.handleStop()
				return
			default:
				slog.Warn("Broadcaster: unknown command type", "type", fmt.Sprintf("%T", cmd))
			}
		case <-ticker.Chan():
			b.handleTick()
		}
	}
}

func (b *Broadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= b.maxClients {
		slog.Warn("Rejecting WebSocket client: max clients reached", "max", b.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients (%d) reached", b.maxClients)
		return
	}

	cw := newClientWriter(c.connection, b.clock)
	b.clients[c.connection] = cw
	metrics.BroadcasterConnectedClients.Set(float64(len(b.clients)))
	slog.Info("WebSocket client registered", "total", len(b.clients))

	// New clients get the current state right away instead of waiting
	// for the next change.
	if data, err := json.Marshal(b.provider.Current()); err == nil {
		select {
		case cw.sendChannel <- data:
		default:
		}
	}

	c.errorChannel <- nil
}

func (b *Broadcaster) handleUnregister(conn *websocket.Conn) {
	cw, exists := b.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(b.clients, conn)
	metrics.BroadcasterConnectedClients.Set(float64(len(b.clients)))
	slog.Info("WebSocket client unregistered", "remaining", len(b.clients))
}

func (b *Broadcaster) handleTick() {
	if len(b.clients) == 0 {
		return
	}

	state := b.provider.Current()
	if b.lastState != nil && *b.lastState == state {
		return
	}
	b.lastState = &state

	data, err := json.Marshal(state)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	var slow []*websocket.Conn
	for conn, writer := range b.clients {
		select {
		case writer.sendChannel <- data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		metrics.BroadcasterDroppedMessages.Inc()
		slog.Warn("Disconnecting slow WebSocket client")
		b.handleUnregister(conn)
	}
}

func (b *Broadcaster) handleStop() {
	for conn, cw := range b.clients {
		cw.stopGraceful("server shutting down")
		delete(b.clients, conn)
	}
	metrics.BroadcasterConnectedClients.Set(0)
	close(b.done)
}
