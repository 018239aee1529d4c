package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"b1bridge/config"
	"b1bridge/diapi"
	"b1bridge/store"
)

// Session is one unit of work. It owns at most one database session and one
// DI API session, both opened lazily on first use and released together by
// Close. Sessions are never shared between goroutines.
type Session struct {
	id   string
	cfg  *config.Config
	log  *zap.SugaredLogger
	db   *store.DB
	dial diapi.Dialer

	sql    *store.Conn
	com    diapi.Company
	closed bool
}

// NewSession creates an empty unit of work.
func NewSession(cfg *config.Config, db *store.DB, dial diapi.Dialer, log *zap.SugaredLogger) *Session {
	return &Session{
		id:   uuid.New().String(),
		cfg:  cfg,
		log:  log,
		db:   db,
		dial: dial,
	}
}

// ID identifies the unit of work in logs.
func (s *Session) ID() string { return s.id }

// SQL returns the database session, opening it on first use.
func (s *Session) SQL(ctx context.Context) (*store.Conn, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.sql == nil {
		conn, err := s.db.Session(ctx)
		if err != nil {
			return nil, err
		}
		s.sql = conn
		s.log.Debugw("opened db session", "session", s.id)
	}
	return s.sql, nil
}

// Company returns the DI API session, opening it on first use.
func (s *Session) Company() (diapi.Company, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.com == nil {
		com, err := s.dial(s.cfg.SAP)
		if err != nil {
			return nil, fmt.Errorf("dial company: %w", err)
		}
		s.com = com
		s.log.Infow("opened company connection", "session", s.id, "company", com.CompanyName())
	}
	return s.com, nil
}

// Close releases whichever connections were opened. Only the first call does
// work; a closed session cannot reopen.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.com != nil {
		s.com.Disconnect()
		s.log.Infow("closed company connection", "session", s.id)
		s.com = nil
	}
	if s.sql != nil {
		if err := s.sql.Close(); err != nil {
			s.log.Warnw("close db session", "session", s.id, "error", err)
		}
		s.sql = nil
	}
}
