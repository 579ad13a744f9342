// Package kds is the realtime hub behind the kitchen, bar and cashier
// displays. Mutating operations broadcast their result here so the
// station dashboards refresh without polling.
package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"resto-pos/models"
	"resto-pos/permissions"
)

const (
	EventItemUpdate    = "item_update"
	EventSessionOpened = "session_opened"
	EventSessionClosed = "session_closed"
	EventBillRequested = "bill_requested"
	EventInvoiceCreate = "invoice_created"
	EventInvoicePaid   = "invoice_paid"
	EventTableUpdate   = "table_update"
)

// Station routing: empty station goes to every client, otherwise only to
// roles working that station (admins always receive everything).
const (
	StationKitchen = "kitchen"
	StationBar     = "bar"
	StationCashier = "cashier"
)

type Message struct {
	Event   string      `json:"event"`
	Station string      `json:"station,omitempty"`
	Data    interface{} `json:"data"`
}

type hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mu      sync.Mutex
}

var stationHub = hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	stationHub.mu.Lock()
	defer stationHub.mu.Unlock()
	stationHub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	stationHub.mu.Lock()
	defer stationHub.mu.Unlock()
	delete(stationHub.clients, conn)
	conn.Close()
}

// StationForItemType maps a menu item category to the station that works
// it.
func StationForItemType(itemType string) string {
	if itemType == models.ItemTypeDrink {
		return StationBar
	}
	return StationKitchen
}

func roleReceives(role, station string) bool {
	if station == "" || role == permissions.RoleAdmin {
		return true
	}
	switch station {
	case StationKitchen:
		return role == permissions.RoleChef || role == permissions.RoleWaiter
	case StationBar:
		return role == permissions.RoleBarista || role == permissions.RoleWaiter
	case StationCashier:
		return role == permissions.RoleCashier
	}
	return false
}

// BroadcastItemUpdate pushes an order-item change to the station that
// prepares it.
func BroadcastItemUpdate(item models.OrderItem) {
	broadcast(Message{
		Event:   EventItemUpdate,
		Station: StationForItemType(item.MenuItem.Type),
		Data:    item,
	})
}

// BroadcastSessionEvent announces session lifecycle changes to everyone;
// the table state changed for all stations.
func BroadcastSessionEvent(event string, session models.TableSession) {
	broadcast(Message{
		Event: event,
		Data:  session,
	})
}

// BroadcastBillRequested lands on the cashier queue.
func BroadcastBillRequested(session models.TableSession) {
	broadcast(Message{
		Event:   EventBillRequested,
		Station: StationCashier,
		Data:    session,
	})
}

func BroadcastInvoiceEvent(event string, invoice models.Invoice) {
	broadcast(Message{
		Event:   event,
		Station: StationCashier,
		Data:    invoice,
	})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func broadcast(msg Message) {
	stationHub.mu.Lock()
	defer stationHub.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	for conn, role := range stationHub.clients {
		if !roleReceives(role, msg.Station) {
			continue
		}
		// Slow or dead clients are dropped on the next read error in the
		// websocket handler; a failed write here is not fatal.
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}
