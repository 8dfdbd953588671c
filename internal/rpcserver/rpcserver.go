// Package rpcserver exposes the pager's control-plane operations over
// gRPC and a parallel HTTP/JSON mirror. There is no protobuf generation
// step: the service is registered by hand with a grpc.ServiceDesc, and a
// JSON encoding.Codec stands in for the usual protobuf wire format.
package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"vmpager/internal/audit"
	"vmpager/internal/pager"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec replaces protobuf's wire codec with plain JSON.
type jsonCodec struct{}

func (jsonCodec) Name() string                      { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Request/response shapes for every RPC.

type CreateRequest struct {
	Pid int64 `json:"pid"`
}
type CreateResponse struct {
	TraceID string `json:"trace_id"`
	Error   string `json:"error,omitempty"`
}

type ExtendRequest struct {
	Pid int64 `json:"pid"`
}
type ExtendResponse struct {
	TraceID string `json:"trace_id"`
	Vaddr   uint64 `json:"vaddr,omitempty"`
	Error   string `json:"error,omitempty"`
}

type FaultRequest struct {
	Pid   int64  `json:"pid"`
	Vaddr uint64 `json:"vaddr"`
}
type FaultResponse struct {
	TraceID string `json:"trace_id"`
	Error   string `json:"error,omitempty"`
}

type SyslogRequest struct {
	Pid   int64  `json:"pid"`
	Vaddr uint64 `json:"vaddr"`
	Len   int    `json:"len"`
}
type SyslogResponse struct {
	TraceID string `json:"trace_id"`
	Hex     string `json:"hex,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DestroyRequest struct {
	Pid int64 `json:"pid"`
}
type DestroyResponse struct {
	TraceID string `json:"trace_id"`
	Error   string `json:"error,omitempty"`
}

type StatsRequest struct{}
type StatsResponse struct {
	TraceID      string `json:"trace_id"`
	FreeFrames   int    `json:"free_frames"`
	TotalFrames  int    `json:"total_frames"`
	FreeBlocks   int    `json:"free_blocks"`
	TotalBlocks  int    `json:"total_blocks"`
	ProcessCount int    `json:"process_count"`
}

// PagerServer is the manual gRPC service interface — no generated stub,
// registered directly against grpc.ServiceDesc below.
type PagerServer interface {
	Create(context.Context, *CreateRequest) (*CreateResponse, error)
	Extend(context.Context, *ExtendRequest) (*ExtendResponse, error)
	Fault(context.Context, *FaultRequest) (*FaultResponse, error)
	Syslog(context.Context, *SyslogRequest) (*SyslogResponse, error)
	Destroy(context.Context, *DestroyRequest) (*DestroyResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
}

func registerPagerServer(s *grpc.Server, srv PagerServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "vmpager.Pager",
		HandlerType: (*PagerServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Create", Handler: handleCreate},
			{MethodName: "Extend", Handler: handleExtend},
			{MethodName: "Fault", Handler: handleFault},
			{MethodName: "Syslog", Handler: handleSyslog},
			{MethodName: "Destroy", Handler: handleDestroy},
			{MethodName: "Stats", Handler: handleStats},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "vmpager",
	}, srv)
}

func handleCreate(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Create(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Create"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Create(ctx, req.(*CreateRequest)) }
	return interceptor(ctx, in, info, handler)
}

func handleExtend(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExtendRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Extend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Extend"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Extend(ctx, req.(*ExtendRequest)) }
	return interceptor(ctx, in, info, handler)
}

func handleFault(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FaultRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Fault(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Fault"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Fault(ctx, req.(*FaultRequest)) }
	return interceptor(ctx, in, info, handler)
}

func handleSyslog(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SyslogRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Syslog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Syslog"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Syslog(ctx, req.(*SyslogRequest)) }
	return interceptor(ctx, in, info, handler)
}

func handleDestroy(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DestroyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Destroy(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Destroy"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Destroy(ctx, req.(*DestroyRequest)) }
	return interceptor(ctx, in, info, handler)
}

func handleStats(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PagerServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vmpager.Pager/Stats"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(PagerServer).Stats(ctx, req.(*StatsRequest)) }
	return interceptor(ctx, in, info, handler)
}

// Server wraps a *pager.Pager to satisfy PagerServer. Create, Extend,
// Fault, Syslog and Destroy recover a caller-bug panic into a gRPC/HTTP
// error instead of crashing the daemon. Create, Fault, Destroy and a
// successful Extend record an audit event after the pager call returns
// (never while a pager lock is held); Syslog and Stats record none.
type Server struct {
	Pager *pager.Pager
	Audit *audit.Logger
}

func (s *Server) traced() string { return audit.NewTraceID() }

func (s *Server) Create(ctx context.Context, req *CreateRequest) (resp *CreateResponse, err error) {
	trace := s.traced()
	defer recoverInto(&err)
	s.Pager.Create(pager.PID(req.Pid))
	s.record(ctx, trace, req.Pid, 0, "create", pager.NoFrame, pager.NoBlock, false)
	return &CreateResponse{TraceID: trace}, nil
}

func (s *Server) Extend(ctx context.Context, req *ExtendRequest) (resp *ExtendResponse, err error) {
	trace := s.traced()
	defer recoverInto(&err)
	vaddr, extendErr := s.Pager.Extend(pager.PID(req.Pid))
	if extendErr != nil {
		return &ExtendResponse{TraceID: trace, Error: extendErr.Error()}, nil
	}
	s.record(ctx, trace, req.Pid, vaddr, "extend", pager.NoFrame, pager.NoBlock, false)
	return &ExtendResponse{TraceID: trace, Vaddr: uint64(vaddr)}, nil
}

func (s *Server) Fault(ctx context.Context, req *FaultRequest) (resp *FaultResponse, err error) {
	trace := s.traced()
	defer recoverInto(&err)
	s.Pager.Fault(pager.PID(req.Pid), uintptr(req.Vaddr))
	s.record(ctx, trace, req.Pid, uintptr(req.Vaddr), "fault", pager.NoFrame, pager.NoBlock, false)
	return &FaultResponse{TraceID: trace}, nil
}

func (s *Server) Syslog(_ context.Context, req *SyslogRequest) (resp *SyslogResponse, err error) {
	trace := s.traced()
	defer recoverInto(&err)
	hex, sErr := s.Pager.Syslog(pager.PID(req.Pid), uintptr(req.Vaddr), req.Len)
	if sErr != nil {
		return &SyslogResponse{TraceID: trace, Error: sErr.Error()}, nil
	}
	return &SyslogResponse{TraceID: trace, Hex: hex}, nil
}

func (s *Server) Destroy(ctx context.Context, req *DestroyRequest) (resp *DestroyResponse, err error) {
	trace := s.traced()
	defer recoverInto(&err)
	s.Pager.Destroy(pager.PID(req.Pid))
	s.record(ctx, trace, req.Pid, 0, "destroy", pager.NoFrame, pager.NoBlock, false)
	return &DestroyResponse{TraceID: trace}, nil
}

func (s *Server) Stats(_ context.Context, _ *StatsRequest) (*StatsResponse, error) {
	trace := s.traced()
	st := s.Pager.Stats()
	return &StatsResponse{
		TraceID:      trace,
		FreeFrames:   st.FreeFrames,
		TotalFrames:  st.TotalFrames,
		FreeBlocks:   st.FreeBlocks,
		TotalBlocks:  st.TotalBlocks,
		ProcessCount: st.ProcessCount,
	}, nil
}

func (s *Server) record(ctx context.Context, trace string, pid int64, vaddr uintptr, kind string, frame pager.FrameID, block pager.BlockID, dirty bool) {
	_ = s.Audit.Record(ctx, audit.Event{
		TraceID: trace,
		Pid:     pager.PID(pid),
		Vaddr:   vaddr,
		Kind:    kind,
		Frame:   frame,
		Block:   block,
		Dirty:   dirty,
	})
}

// recoverInto turns a pager panic (bad pid or page) into a gRPC error
// instead of taking the whole daemon down.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pager: %v", r)
	}
}

// ListenAndServeGRPC blocks serving the gRPC listener at addr.
func ListenAndServeGRPC(addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listen %s: %w", addr, err)
	}
	gs := grpc.NewServer()
	registerPagerServer(gs, srv)
	return gs.Serve(lis)
}

// ListenAndServeHTTP mirrors the same operations as plain JSON-over-HTTP,
// alongside the gRPC listener.
func ListenAndServeHTTP(addr string, srv *Server) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/create", jsonHandler(srv.Create))
	mux.HandleFunc("/api/extend", jsonHandler(srv.Extend))
	mux.HandleFunc("/api/fault", jsonHandler(srv.Fault))
	mux.HandleFunc("/api/syslog", jsonHandler(srv.Syslog))
	mux.HandleFunc("/api/destroy", jsonHandler(srv.Destroy))
	mux.HandleFunc("/api/stats", jsonHandler(srv.Stats))
	return http.ListenAndServe(addr, mux)
}

func jsonHandler[Req any, Resp any](call func(context.Context, *Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, context.Canceled) {
				http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		resp, err := call(ctx, &req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
