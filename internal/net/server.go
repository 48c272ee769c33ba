package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"outcry/internal/command"
	"outcry/internal/dispatch"
	"outcry/internal/report"
	"outcry/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	DefaultNWorkers     = 10
	defaultIdleTimeout  = 10 * time.Minute
	defaultWriteTimeout = 5 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
)

// ClientSession contains relevant information pertaining to an individual
// connected TCP session.
type ClientSession struct {
	id       string
	conn     net.Conn
	reporter *report.TextReporter
}

// ClientMessage links an intent to the client sending it.
type ClientMessage struct {
	session *ClientSession
	intent  command.Intent
}

type Server struct {
	address            string
	port               int
	dispatcher         *dispatch.Dispatcher
	pool               utils.WorkerPool
	cancel             context.CancelFunc
	clientSessions     map[string]*ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan (ClientMessage)
}

// New creates a server that serves the line protocol on address:port. Each
// worker serves one connection at a time, so workers bounds the number of
// clients handled concurrently; further clients queue until a worker frees.
func New(address string, port int, workers uint, dispatcher *dispatch.Dispatcher) *Server {
	if workers == 0 {
		workers = DefaultNWorkers
	}
	return &Server{
		address:        address,
		port:           port,
		dispatcher:     dispatcher,
		pool:           utils.NewWorkerPool(workers),
		clientSessions: make(map[string]*ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

// Shutdown stops a running server.
func (s *Server) Shutdown() {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	if s.cancel != nil {
		log.Info().Msg("server shutting down")
		s.cancel()
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts clients on listener until ctx is done or Shutdown is called.
// The listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	// Setup a cancel on the context for future shutdown.
	s.clientSessionsLock.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.clientSessionsLock.Unlock()
	defer s.Shutdown()

	t, _ := tomb.WithContext(ctx)

	// Unblock Accept and every connection read once we start dying.
	t.Go(func() error {
		<-t.Dying()
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
		s.closeClientSessions()
		return nil
	})

	// Start the worker pool.
	s.pool.Setup(t, s.handleConnection)

	// Start the session handler.
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	// Start accepting connections.
	t.Go(func() error {
		return s.acceptConnections(t, listener)
	})

	log.Info().
		Str("address", listener.Addr().String()).
		Msg("server running")

	err := t.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) acceptConnections(t *tomb.Tomb, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-t.Dying():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Error().Err(err).Msg("error accepting client")
			continue
		}

		// Add the client to client sessions we are tracking.
		// We expect to potentially maintain a long TCP session.
		session := s.addClientSession(conn)
		log.Info().
			Str("session", session.id).
			Str("address", conn.RemoteAddr().String()).
			Msg("new client added")

		// Pass over the connection to be read from.
		if !s.pool.AddTask(t, session) {
			s.deleteClientSession(session.id)
			return nil
		}
	}
}

// sessionHandler is the only goroutine that touches the dispatcher, so every
// client's intents reach the engine one at a time in arrival order. Output
// goes back to the client that sent the intent.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			session := message.session
			if err := session.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
				log.Debug().Err(err).Str("session", session.id).Msg("failed setting write deadline")
			}

			err := s.dispatcher.Dispatch(message.intent, session.reporter)
			if err != nil {
				log.Error().
					Err(err).
					Str("session", session.id).
					Msg("unable to send report")
			}
		}
	}
}

// handleConnection is a worker method which reads lines off the connection
// until the client leaves, parses them and passes the intents forward to
// sessionHandler. Malformed or over-long lines are logged and ignored. The
// client session is cleaned up when the connection ends.
// Note, any error returned from here is fatal.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	session, ok := task.(*ClientSession)
	if !ok {
		return ErrImproperConversion
	}
	defer s.deleteClientSession(session.id)

	src := command.NewSource(session.conn).
		WithLogger(log.With().Str("session", session.id).Logger())
	for {
		// Set max idle time between commands.
		err := session.conn.SetReadDeadline(time.Now().Add(defaultIdleTimeout))
		if err != nil {
			log.Error().
				Str("session", session.id).
				Err(err).
				Msg("failed setting deadline for connection")
			return nil
		}

		intent, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			select {
			case <-t.Dying():
			default:
				log.Error().
					Err(err).
					Str("session", session.id).
					Msg("error reading from connection")
			}
			return nil
		}

		select {
		case <-t.Dying():
			return nil
		case s.clientMessages <- ClientMessage{session: session, intent: intent}:
		}
	}
}

// addClientSession is an atomic map add
func (s *Server) addClientSession(conn net.Conn) *ClientSession {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	session := &ClientSession{
		id:       uuid.New().String(),
		conn:     conn,
		reporter: report.NewTextReporter(conn),
	}
	s.clientSessions[session.id] = session
	return session
}

// deleteClientSession is an atomic map remove that also closes the connection.
func (s *Server) deleteClientSession(id string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	session, ok := s.clientSessions[id]
	if !ok {
		return
	}
	delete(s.clientSessions, id)
	if err := session.conn.Close(); err != nil {
		log.Debug().Err(err).Str("session", id).Msg("unable to close connection")
	}
	log.Info().Str("session", id).Msg("client removed")
}

func (s *Server) closeClientSessions() {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	for id, session := range s.clientSessions {
		if err := session.conn.Close(); err != nil {
			log.Debug().Err(err).Str("session", id).Msg("unable to close connection")
		}
		delete(s.clientSessions, id)
	}
}

// Sessions is the number of connected clients.
func (s *Server) Sessions() int {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	return len(s.clientSessions)
}
