// Package live serves interactive calculations over a websocket. Each client
// message is answered with exactly one reply carrying the same id.
package live

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	TypePressureDrop = "pressure-drop"
	TypeFanno        = "fanno"
	TypeRayleigh     = "rayleigh"
	TypeResult       = "result"
	TypeError        = "error"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 1 << 20
)

type Msg struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type Server struct {
	Options  gas.Options
	Upgrader websocket.Upgrader
}

func NewServer(opts gas.Options) *Server {
	return &Server{
		Options: opts,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// session couples one connection with its reply queue. Only writeLoop writes
// to conn.
type session struct {
	conn  *websocket.Conn
	opts  gas.Options
	reply chan Msg
	done  chan struct{}
}

func (s *Server) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("error", err).Warn("websocket upgrade failed")
		return
	}
	sess := &session{
		conn:  conn,
		opts:  s.Options,
		reply: make(chan Msg, 16),
		done:  make(chan struct{}),
	}
	go sess.writeLoop()
	sess.readLoop()
}

func (s *session) readLoop() {
	defer func() {
		close(s.reply)
		<-s.done
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessage)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Msg
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("error", err).Warn("websocket closed")
			}
			return
		}
		s.reply <- s.handle(msg)
	}
}

func (s *session) writeLoop() {
	defer close(s.done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-s.reply:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(&msg); err != nil {
				log.WithField("error", err).Warn("websocket write failed")
				// keep draining so readLoop never blocks
				for range s.reply {
				}
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				for range s.reply {
				}
				return
			}
		}
	}
}

func (s *session) handle(msg Msg) Msg {
	var (
		res any
		err error
	)
	switch msg.Type {
	case TypePressureDrop:
		var in gas.DropInput
		if err = json.Unmarshal(msg.Content, &in); err == nil {
			res, err = gas.CalculateDrop(in, s.opts)
		}
	case TypeFanno:
		var in gas.FannoInput
		if err = json.Unmarshal(msg.Content, &in); err == nil {
			res, err = gas.MarchFanno(in, s.opts)
		}
	case TypeRayleigh:
		var in gas.RayleighInput
		if err = json.Unmarshal(msg.Content, &in); err == nil {
			res, err = gas.MarchRayleigh(in, s.opts)
		}
	default:
		err = fmt.Errorf("no such type %q", msg.Type)
	}
	if err != nil {
		return reply(msg.ID, TypeError, map[string]string{"error": err.Error(), "type": gas.ErrorType(err)})
	}
	return reply(msg.ID, TypeResult, res)
}

func reply(id, typ string, v any) Msg {
	content, err := json.Marshal(v)
	if err != nil {
		typ = TypeError
		content, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return Msg{Type: typ, ID: id, Content: content}
}
