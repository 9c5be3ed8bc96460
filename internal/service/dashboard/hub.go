package dashboard

import (
	"sync"

	"atelier/internal/pkg/logger"
)

// Hub 维护所有活跃的看板连接，并负责事件广播。
// 看板是全量订阅：每条订单事件推送给所有在线客户端。
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	lock       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 驱动注册、注销与广播。阻塞直到 Stop 被调用。
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			h.clients[client] = struct{}{}
			h.lock.Unlock()
			logger.Logger.Info().Str("remote", client.remoteAddr).Msg("Dashboard client connected.")
		case client := <-h.unregister:
			h.lock.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.lock.Unlock()
			logger.Logger.Info().Str("remote", client.remoteAddr).Msg("Dashboard client disconnected.")
		case message := <-h.broadcast:
			h.lock.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 写入通道已满说明客户端跟不上，丢弃这条而不是阻塞广播循环
					logger.Logger.Warn().Str("remote", client.remoteAddr).Msg("dashboard client is slow, dropping event")
				}
			}
			h.lock.RUnlock()
		case <-h.done:
			h.lock.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.lock.Unlock()
			return
		}
	}
}

// Broadcast 向所有在线客户端投递一条事件。
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Stop 关闭 Hub 并断开所有客户端。
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount 返回当前在线客户端数。
func (h *Hub) ClientCount() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}
