// Package rpc exposes turn processing to call-flow engines over JSON-RPC.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/service"
)

// Server accepts JSON-RPC connections.
type Server struct {
	mu        sync.Mutex
	listener  net.Listener
	rpcServer *rpc.Server
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the dialog service.
func NewServer(svc *service.Service) (*Server, error) {
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName("Dialog", handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			slog.Warn("rpc accept error", "error", err)
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the Dialog RPC methods.
type Handler struct {
	service *service.Service
}

// ProcessTurn runs one caller utterance.
func (h *Handler) ProcessTurn(req *domain.TurnRequest, resp *domain.TurnOutcome) error {
	if req == nil {
		return errors.New("turn request is required")
	}

	outcome, err := h.service.ProcessTurn(context.Background(), *req)
	if err != nil {
		return err
	}
	if resp != nil && outcome != nil {
		*resp = *outcome
	}
	return nil
}
