package ws

import (
	"log/slog"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/pkg/broadcast"
	"github.com/gorilla/websocket"
)

type connection struct {
	id   string
	sock *websocket.Conn
	sub  *broadcast.Subscription[domain.ChangeEvent]
}

// EventMessage is the wire shape of a change event pushed to
// connected clients.
type EventMessage struct {
	Event     string       `json:"event"`
	ProductID string       `json:"productId,omitempty"`
	Product   *ProductView `json:"product,omitempty"`
	Cart      *CartView    `json:"cart,omitempty"`
}

type (
	ProductView struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Code        string   `json:"code"`
		Price       float64  `json:"price"`
		Stock       int      `json:"stock"`
		Category    string   `json:"category"`
		Thumbnails  []string `json:"thumbnails"`
	}

	CartView struct {
		ID       string         `json:"id"`
		Products []CartItemView `json:"products"`
	}

	CartItemView struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	}
)

func makeEventMessage(evt domain.ChangeEvent) EventMessage {
	msg := EventMessage{
		Event:     string(evt.Kind),
		ProductID: evt.ProductID,
	}
	if evt.Product != nil {
		msg.Product = &ProductView{
			ID:          evt.Product.ProductID,
			Title:       evt.Product.Title,
			Description: evt.Product.Description,
			Code:        evt.Product.Code,
			Price:       evt.Product.Price,
			Stock:       evt.Product.Stock,
			Category:    evt.Product.Category,
			Thumbnails:  evt.Product.Thumbnails,
		}
	}
	if evt.Cart != nil {
		cv := &CartView{ID: evt.Cart.CartID, Products: []CartItemView{}}
		for _, it := range evt.Cart.Items {
			cv.Products = append(cv.Products, CartItemView{
				Product:  it.ProductID,
				Quantity: it.Quantity,
			})
		}
		msg.Cart = cv
	}
	return msg
}

// writePump forwards subscribed events to the socket. A write that
// misses the deadline drops the connection instead of stalling the
// fan-out of other clients.
func (c *connection) writePump() {
	const op = "connection.writePump"
	log := slog.With("op", op, "connID", c.id)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-c.sub.C():
			if !ok {
				_ = c.sock.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait),
				)
				return
			}
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteJSON(makeEventMessage(evt)); err != nil {
				log.Warn("failed to push event", "err", err)
				_ = c.sock.Close()
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.sock.Close()
				return
			}
		}
	}
}

// readPump blocks until the client goes away. Inbound payloads are
// ignored: mutations go through the HTTP API, the socket is a
// one-way delta feed.
func (c *connection) readPump() {
	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.sock.ReadMessage(); err != nil {
			return
		}
	}
}
