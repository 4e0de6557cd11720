package watch

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/tracked-dev/tracked/pkg/tracked"
)

// connIDCounter is the source of unique WebSocket listener keys.
var connIDCounter uint64

func nextConnID() string {
	return fmt.Sprintf("watch-conn-%d", atomic.AddUint64(&connIDCounter, 1))
}

// ChangeEvent is the frame pushed to WebSocket clients, one per change
// round. Old is the pre-mutation snapshot, New the post-mutation value.
type ChangeEvent[T any] struct {
	Old T `json:"old"`
	New T `json:"new"`
}

// client is one WebSocket subscriber.
type client[T any] struct {
	id   string
	conn *websocket.Conn

	// writeMu serializes writes to the connection.
	writeMu sync.Mutex
}

// send pushes one change event, reporting whether the write succeeded.
func (c *client[T]) send(ev ChangeEvent[T]) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ev)
}

func (s *Server[T]) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade error", "error", err)
		return
	}

	c := &client[T]{
		id:   nextConnID(),
		conn: conn,
	}

	// Subscribe before the initial snapshot so no change round between
	// the two can be missed; the client may see the same value twice.
	s.tracker.AddListener(c.id, tracked.ListenerFunc[T](func(old, new T) {
		if err := c.send(ChangeEvent[T]{Old: old, New: new}); err != nil {
			s.logger.Error("websocket write error", "conn", c.id, "error", err)
			s.dropClient(c)
		}
	}))
	s.recordListeners()
	s.logger.Info("watch client connected", "conn", c.id)

	// Initial snapshot frame: old and new both carry the current value.
	current := s.Read()
	if err := c.send(ChangeEvent[T]{Old: current, New: current}); err != nil {
		s.dropClient(c)
		return
	}

	// Drain the connection to detect close; clients send nothing else.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					s.logger.Error("websocket read error", "conn", c.id, "error", err)
				}
				s.dropClient(c)
				return
			}
		}
	}()
}

// dropClient unregisters and closes a client. Safe to call more than once.
func (s *Server[T]) dropClient(c *client[T]) {
	if _, ok := s.tracker.RemoveListener(c.id); ok {
		s.logger.Info("watch client disconnected", "conn", c.id)
	}
	c.conn.Close()
	s.recordListeners()
}

func (s *Server[T]) recordListeners() {
	if s.metrics != nil {
		s.metrics.SetListeners(s.tracker.Listeners())
	}
}
