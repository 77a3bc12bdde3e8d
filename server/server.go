// Package server exposes the assistant over Connect RPC.
//
// The service is ezra.v1.AssistantService with four unary procedures. Messages
// are plain Go structs carried as JSON, so any HTTP client can call it:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"query": "what time is it"}' \
//	  http://localhost:8080/ezra.v1.AssistantService/Orchestrate
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/kernel"
	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/prompts"
)

// ServiceName is the fully-qualified name of the assistant service.
const ServiceName = "ezra.v1.AssistantService"

// Procedure paths, relative to the server's base URL.
const (
	OrchestrateProcedure = "/" + ServiceName + "/Orchestrate"
	ExecuteToolProcedure = "/" + ServiceName + "/ExecuteTool"
	AnswerProcedure      = "/" + ServiceName + "/Answer"
	ListToolsProcedure   = "/" + ServiceName + "/ListTools"
)

// EventRequest is emitted once per handled call.
const EventRequest observability.EventType = "server.request"

// Service is the behavior served. *kernel.Kernel implements it.
type Service interface {
	Orchestrate(ctx context.Context, req kernel.Request) (*kernel.Result, error)
	ExecuteTool(ctx context.Context, name string, args protocol.Args) protocol.ToolResult
	Answer(ctx context.Context, req kernel.AnswerRequest) (string, error)
	Tools() []protocol.Descriptor
	Manifest() string
}

type handler struct {
	svc Service
}

// NewHandler builds an HTTP handler serving svc and returns the path on
// which to mount it.
func NewHandler(svc Service, opts ...connect.HandlerOption) (string, http.Handler) {
	h := &handler{svc: svc}
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(OrchestrateProcedure, connect.NewUnaryHandler(OrchestrateProcedure, h.orchestrate, opts...))
	mux.Handle(ExecuteToolProcedure, connect.NewUnaryHandler(ExecuteToolProcedure, h.executeTool, opts...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, h.answer, opts...))
	mux.Handle(ListToolsProcedure, connect.NewUnaryHandler(ListToolsProcedure, h.listTools, opts...))

	return "/" + ServiceName + "/", mux
}

func (h *handler) orchestrate(ctx context.Context, req *connect.Request[OrchestrateRequest]) (*connect.Response[OrchestrateResponse], error) {
	result, err := h.svc.Orchestrate(ctx, kernel.Request{
		Query:     req.Msg.Query,
		AudioData: req.Msg.AudioData,
		MIMEType:  req.Msg.MIMEType,
	})
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&OrchestrateResponse{
		Plan:      result.Plan,
		Narration: result.Narration,
	}), nil
}

func (h *handler) executeTool(ctx context.Context, req *connect.Request[ExecuteToolRequest]) (*connect.Response[ExecuteToolResponse], error) {
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tool name is required"))
	}
	result := h.svc.ExecuteTool(ctx, req.Msg.Name, req.Msg.Args)
	return connect.NewResponse(&ExecuteToolResponse{Result: result}), nil
}

func (h *handler) answer(ctx context.Context, req *connect.Request[AnswerRequest]) (*connect.Response[AnswerResponse], error) {
	text, err := h.svc.Answer(ctx, kernel.AnswerRequest{
		Query:     req.Msg.Query,
		RawAnswer: req.Msg.RawAnswer,
	})
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&AnswerResponse{Answer: text}), nil
}

func (h *handler) listTools(_ context.Context, _ *connect.Request[ListToolsRequest]) (*connect.Response[ListToolsResponse], error) {
	return connect.NewResponse(&ListToolsResponse{
		Tools:    h.svc.Tools(),
		Manifest: h.svc.Manifest(),
	}), nil
}

// connectError assigns a Connect status code to a service error.
func connectError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, kernel.ErrInvalidRequest):
		return connect.CodeInvalidArgument
	case errors.Is(err, model.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, model.ErrMissingAPIKey), errors.Is(err, model.ErrUnknownProvider),
		errors.Is(err, model.ErrAudioUnsupported), errors.Is(err, prompts.ErrTemplateNotFound):
		return connect.CodeFailedPrecondition
	case errors.Is(err, model.ErrGeneration), errors.Is(err, model.ErrEmptyResponse):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// WithObserver reports every call as an EventRequest.
func WithObserver(o observability.Observer) connect.Option {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(
		func(next connect.UnaryFunc) connect.UnaryFunc {
			return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				start := time.Now()
				res, err := next(ctx, req)

				level := observability.LevelInfo
				code := "ok"
				if err != nil {
					level = observability.LevelWarning
					code = connect.CodeOf(err).String()
				}
				o.OnEvent(ctx, observability.Event{
					Type:      EventRequest,
					Level:     level,
					Timestamp: time.Now(),
					Source:    "server.Handler",
					Data: map[string]any{
						"procedure": req.Spec().Procedure,
						"code":      code,
						"duration":  time.Since(start).String(),
					},
				})
				return res, err
			}
		},
	))
}

// ListenAndServe serves svc on addr until ctx ends, then shuts down
// gracefully, allowing in-flight calls up to the given grace period.
func ListenAndServe(ctx context.Context, addr string, svc Service, grace time.Duration, opts ...connect.HandlerOption) error {
	path, h := NewHandler(svc, opts...)
	mux := http.NewServeMux()
	mux.Handle(path, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
