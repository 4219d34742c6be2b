package aingle

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// UnsubscribeFunc deregisters a subscription. Calling it more than once is
// harmless.
type UnsubscribeFunc func()

type subscription struct {
	id uint64
	fn func(*Entry)
	// cancel releases a backend-side registration (Notifier backends); nil
	// for socket-delivered subscriptions.
	cancel UnsubscribeFunc
}

// socket owns one WebSocket connection and the goroutine reading
// notifications off it. Decoded entries are handed to onEntry one at a
// time, so subscribers observe notifications strictly in arrival order.
type socket struct {
	conn      *websocket.Conn
	cancel    context.CancelFunc
	done      chan struct{}
	logger    log.Logger
	errorChan chan<- error
	onEntry   func(*Entry)
	onExit    func(*socket)

	mu     sync.Mutex
	closed bool
}

func dialSocket(ctx context.Context, url string, logger log.Logger, errorChan chan<- error, onEntry func(*Entry), onExit func(*socket)) (*socket, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &socket{
		conn:      conn,
		cancel:    cancel,
		done:      make(chan struct{}),
		logger:    logger,
		errorChan: errorChan,
		onEntry:   onEntry,
		onExit:    onExit,
	}
	go s.readLoop(loopCtx)
	return s, nil
}

// close tears the connection down and waits for the read loop to exit.
// Safe to call more than once.
func (s *socket) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	if err := s.conn.Close(websocket.StatusNormalClosure, "client disconnect"); err != nil {
		level.Debug(s.logger).Log("msg", "socket close", "err", err)
	}
	<-s.done
}

func (s *socket) readLoop(ctx context.Context) {
	defer close(s.done)
	defer s.cancel()
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			s.mu.Lock()
			deliberate := s.closed
			s.closed = true
			s.mu.Unlock()

			if s.onExit != nil {
				s.onExit(s)
			}
			if !deliberate {
				level.Debug(s.logger).Log("msg", "socket read failed", "err", err)
				if s.errorChan != nil {
					select {
					case s.errorChan <- err:
					default:
						level.Debug(s.logger).Log("msg", "error channel full, dropping", "err", err)
					}
				}
			}
			return
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			level.Debug(s.logger).Log("msg", "discarding malformed notification", "err", err)
			continue
		}
		s.onEntry(&entry)
	}
}
