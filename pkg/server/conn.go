package server

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"gato/pkg/http"
)

// ConnState is the lifecycle stage of a connection.
type ConnState int32

const (
	StateAccepted ConnState = iota
	StateReading
	StateParsed
	StateDispatched
	StateResponded
	StateClosed
)

var connStateNames = [...]string{
	StateAccepted:   "accepted",
	StateReading:    "reading",
	StateParsed:     "parsed",
	StateDispatched: "dispatched",
	StateResponded:  "responded",
	StateClosed:     "closed",
}

func (s ConnState) String() string {
	if s >= 0 && int(s) < len(connStateNames) {
		return connStateNames[s]
	}
	return fmt.Sprintf("ConnState(%d)", int32(s))
}

// conn serves exactly one request on one accepted connection.
type conn struct {
	server *Server
	id     uint64
	rwc    net.Conn
	remote string
	log    logrus.FieldLogger
	state  atomic.Int32

	raw  []byte
	req  *http.Request
	resp *http.Response
}

type stateFunc func(*conn) stateFunc

func newConn(s *Server, id uint64, rwc net.Conn) *conn {
	remote := rwc.RemoteAddr().String()
	return &conn{
		server: s,
		id:     id,
		rwc:    rwc,
		remote: remote,
		log:    s.log.WithFields(logrus.Fields{"conn": id, "remote": remote}),
	}
}

// serve runs the state machine until the connection is closed.
func (c *conn) serve() {
	c.setState(StateAccepted)
	for state := readRequest; state != nil; {
		state = state(c)
	}
}

func (c *conn) setState(st ConnState) {
	c.state.Store(int32(st))
	if hook := c.server.ConnState; hook != nil {
		hook(c.rwc, st)
	}
}

func (c *conn) getState() ConnState {
	return ConnState(c.state.Load())
}

// state funcs

func readRequest(c *conn) stateFunc {
	c.setState(StateReading)
	raw, err := http.ReadMessage(c.rwc, http.ReadOptions{
		ChunkSize: c.server.cfg.ChunkSize,
		Framing:   c.server.cfg.Framing,
	})
	if err != nil {
		c.log.WithError(err).WithField("buffered", len(raw)).Error("read failed")
	}
	if len(raw) == 0 {
		c.log.Debug("peer closed without sending a request")
		return closeConn
	}
	c.raw = raw
	return parseRequest
}

func parseRequest(c *conn) stateFunc {
	req, err := http.ParseRequest(c.raw)
	if err != nil {
		c.log.WithError(err).Error("malformed request")
		c.resp = http.Error(http.StatusBadRequest)
		return writeResponse
	}
	req.RemoteAddr = c.remote
	c.req = req
	c.setState(StateParsed)
	return dispatch
}

func dispatch(c *conn) stateFunc {
	c.setState(StateDispatched)
	c.resp = c.server.dispatch(c.req, c.log)
	c.log.WithFields(logrus.Fields{
		"method": c.req.Method,
		"status": c.resp.StatusCode,
	}).Infof("%s [%d]: %s", c.remote, c.resp.StatusCode, c.req.Target)
	return writeResponse
}

func writeResponse(c *conn) stateFunc {
	if _, err := c.resp.WriteTo(c.rwc); err != nil {
		c.log.WithError(err).Error("write failed")
		return closeConn
	}
	c.setState(StateResponded)
	return closeConn
}

type closeWriter interface {
	CloseWrite() error
}

func closeConn(c *conn) stateFunc {
	if cw, ok := c.rwc.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			c.log.WithError(err).Debug("close write failed")
		}
	}
	if err := c.rwc.Close(); err != nil {
		c.log.WithError(err).Debug("close failed")
	}
	c.setState(StateClosed)
	return nil
}
