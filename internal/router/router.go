package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// Handler defines a JSON-RPC method handler interface.
//
// Implementations of this interface can be registered with the Router
// to handle specific JSON-RPC methods.
type Handler interface {
	// Handle processes a JSON-RPC request.
	//
	// Parameters:
	//   - ctx: Context for request (supports cancellation and timeout)
	//   - request: The JSON-RPC request to handle
	//
	// Returns:
	//   - *jsonrpc.Response: The response to return to client
	//   - error: An error if handling fails
	Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)

	// Method returns the JSON-RPC method name this handler supports.
	//
	// Returns:
	//   - string: The method name (e.g., "eth_requestAccounts")
	Method() string
}

// Recorder receives one observation per routed request.
//
// code is 0 for successful responses and the JSON-RPC error code otherwise.
type Recorder interface {
	ObserveRPC(method string, code int, duration time.Duration)
}

// Router routes JSON-RPC requests to appropriate handlers.
//
// This router supports:
//   - Method-based handler registration
//   - Default handler for unregistered methods
//   - Request size limiting
type Router struct {
	handlers       map[string]Handler
	defaultHandler Handler // 默认处理器，处理未注册的方法
	recorder       Recorder
	mu             sync.RWMutex
	logger         *logrus.Logger
	maxRequestSize int64 // 最大请求体大小（字节）
}

// DefaultMaxRequestSize is the request body limit used by NewRouter.
const DefaultMaxRequestSize = 10 * 1024 * 1024

// NewRouter creates a new JSON-RPC router with default settings.
//
// Default max request size is 10MB.
func NewRouter(logger *logrus.Logger) *Router {
	return NewRouterWithMaxSize(logger, DefaultMaxRequestSize)
}

// NewRouterWithMaxSize creates a new JSON-RPC router with custom max request size.
//
// Parameters:
//   - logger: The logger to use for request logging
//   - maxRequestSize: Maximum allowed request body size in bytes
//
// Returns:
//   - *Router: A new router instance
func NewRouterWithMaxSize(logger *logrus.Logger, maxRequestSize int64) *Router {
	return &Router{
		handlers:       make(map[string]Handler),
		logger:         logger,
		maxRequestSize: maxRequestSize,
	}
}

// SetDefaultHandler sets the default handler for unregistered methods.
func (r *Router) SetDefaultHandler(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaultHandler = handler
	r.logger.Info("Default handler set")
}

// SetRecorder installs a recorder that observes every routed request.
func (r *Router) SetRecorder(recorder Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recorder = recorder
}

// Register registers a JSON-RPC method handler.
//
// The handler's Method() return value is used as the registration key.
//
// Returns:
//   - error: An error if handler method is empty or already registered
func (r *Router) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	method := handler.Method()
	if method == "" {
		return fmt.Errorf("handler method name cannot be empty")
	}

	if _, exists := r.handlers[method]; exists {
		return fmt.Errorf("handler for method %s already registered", method)
	}

	r.handlers[method] = handler
	r.logger.WithField("method", method).Info("Registered JSON-RPC handler")
	return nil
}

// Unregister removes a handler for the specified method.
func (r *Router) Unregister(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, method)
	r.logger.WithField("method", method).Info("Unregistered JSON-RPC handler")
}

// routeRequest is a helper function that handles routing logic for a single request.
//
// It performs handler lookup, execution, and error handling.
func (r *Router) routeRequest(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	if request == nil {
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}

	start := time.Now()
	response := r.dispatch(ctx, request, logger)
	r.observe(request.Method, response, time.Since(start))
	return response
}

// dispatch looks up the handler for a request and normalizes its result.
func (r *Router) dispatch(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	}).Info("Routing request")

	handler, found := r.getHandler(request.Method)
	if !found {
		handler = r.getDefaultHandler()
		if handler == nil {
			logger.WithField("method", request.Method).Warn("Method not found")
			return jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFoundError)
		}
		logger.WithField("method", request.Method).Debug("Using default handler")
	}

	response, err := handler.Handle(ctx, request)
	if err != nil {
		logger.WithError(err).Error("Handler execution failed")
		return errorResponse(request.ID, err)
	}

	if response == nil {
		logger.Error("Handler returned nil response")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
	}

	response.ID = request.ID
	response.JSONRPC = jsonrpc.JSONRPCVersion

	logger.Debug("Request routed successfully")
	return response
}

// errorResponse converts a handler error into a JSON-RPC error response.
func errorResponse(id interface{}, err error) *jsonrpc.Response {
	if jsonErr, ok := err.(*jsonrpc.Error); ok {
		return jsonrpc.NewErrorResponse(id, jsonErr)
	}
	return jsonrpc.NewErrorResponse(id, jsonrpc.NewServerError(
		jsonrpc.CodeInternalError,
		"Internal server error",
		err.Error(),
	))
}

// observe reports a routed request to the recorder, if any.
func (r *Router) observe(method string, response *jsonrpc.Response, duration time.Duration) {
	r.mu.RLock()
	recorder := r.recorder
	r.mu.RUnlock()
	if recorder == nil {
		return
	}

	code := 0
	if response != nil && response.Error != nil {
		code = response.Error.Code
	}
	recorder.ObserveRPC(method, code, duration)
}

// RouteWithContext routes a single request using the provided logger entry.
//
// This is useful for maintaining log context across request lifecycle.
func (r *Router) RouteWithContext(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	return r.routeRequest(ctx, request, logger)
}

// Route routes a single JSON-RPC request to the appropriate handler.
//
// This method handles request validation, method lookup, handler execution,
// and error response generation.
func (r *Router) Route(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	if request == nil {
		r.logger.Warn("Received nil JSON-RPC request")
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}
	logger := r.logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	})
	return r.routeRequest(ctx, request, logger)
}

// MaxBatchSize defines the maximum number of requests allowed in a batch
const MaxBatchSize = 100

// DefaultBatchWorkerCount defines the default number of workers for batch request processing
const DefaultBatchWorkerCount = 50

// RouteBatch routes a batch of JSON-RPC requests.
//
// Each request in the batch is routed independently using a worker pool.
// Responses are returned in request order.
func (r *Router) RouteBatch(ctx context.Context, requests []jsonrpc.Request) []*jsonrpc.Response {
	if len(requests) == 0 {
		return []*jsonrpc.Response{
			jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError),
		}
	}

	if len(requests) > MaxBatchSize {
		r.logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		return []*jsonrpc.Response{batchTooLargeResponse()}
	}

	r.logger.WithField("count", len(requests)).Info("Routing batch requests")

	responses := make([]*jsonrpc.Response, len(requests))

	taskCount := len(requests)
	taskCh := make(chan int, taskCount)

	workerCount := DefaultBatchWorkerCount
	if taskCount < workerCount {
		workerCount = taskCount
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(taskCh)
		for i := 0; i < taskCount; i++ {
			taskCh <- i
		}
	}()

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for idx := range taskCh {
				if ctx.Err() != nil {
					responses[idx] = jsonrpc.NewErrorResponse(requests[idx].ID, jsonrpc.NewServerError(
						jsonrpc.CodeInternalError, "Internal error", ctx.Err().Error()))
					continue
				}

				func() {
					defer func() {
						if p := recover(); p != nil {
							r.logger.WithField("worker_id", workerID).WithField("panic", p).Error("Worker panic recovered")
							responses[idx] = jsonrpc.NewErrorResponse(
								requests[idx].ID,
								jsonrpc.NewServerError(jsonrpc.CodeInternalError, "Internal error", "Processing failed"),
							)
						}
					}()

					responses[idx] = r.Route(ctx, &requests[idx])
				}()
			}
		}(i)
	}

	wg.Wait()

	r.logger.WithFields(logrus.Fields{
		"request_count":  taskCount,
		"response_count": len(responses),
	}).Info("Batch routing completed")
	return responses
}

// batchTooLargeResponse returns the error for batches over MaxBatchSize.
func batchTooLargeResponse() *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(nil, jsonrpc.NewServerError(
		jsonrpc.CodeInvalidParams, "Invalid params",
		fmt.Sprintf("Batch size exceeds maximum limit of %d", MaxBatchSize)))
}

// getHandler retrieves a registered handler for the given method name.
func (r *Router) getHandler(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, found := r.handlers[method]
	return handler, found
}

// getDefaultHandler returns the handler for unregistered methods.
func (r *Router) getDefaultHandler() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultHandler
}

// GetRegisteredMethods returns a list of all registered method names.
func (r *Router) GetRegisteredMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.handlers))
	for method := range r.handlers {
		methods = append(methods, method)
	}

	return methods
}

// HasHandler checks if a handler is registered for the given method.
func (r *Router) HasHandler(method string) bool {
	_, found := r.getHandler(method)
	return found
}

// parseAndRoute parses the request body and routes requests to handlers.
//
// A single request object yields a single response object; an array yields
// an array, even when it holds one element.
func (r *Router) parseAndRoute(w http.ResponseWriter, req *http.Request, logger *logrus.Entry, body []byte) {
	requests, err := jsonrpc.ParseRequest(body)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse JSON-RPC request")
		r.writeResponses(w, logger, []*jsonrpc.Response{jsonrpc.NewErrorResponse(nil, jsonrpc.ParseError)}, false)
		return
	}

	if len(requests) > MaxBatchSize {
		logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		r.writeResponses(w, logger, []*jsonrpc.Response{batchTooLargeResponse()}, false)
		return
	}

	batch := jsonrpc.IsBatch(body)
	ctx := req.Context()

	var responses []*jsonrpc.Response
	if fwdHandler, ok := r.getDefaultHandler().(*ForwardHandler); ok && batch {
		responses = r.routeBatchWithForwarding(ctx, logger, requests, fwdHandler)
	} else {
		responses = make([]*jsonrpc.Response, 0, len(requests))
		for i := range requests {
			responses = append(responses, r.RouteWithContext(ctx, &requests[i], logger))
		}
	}

	r.writeResponses(w, logger, responses, batch)
}

// routeBatchWithForwarding routes registered methods through their handlers
// and forwards the remaining requests to the active wallet in one batch,
// preserving request order in responses.
//
// When the active wallet cannot forward raw batches, every request is routed
// individually.
func (r *Router) routeBatchWithForwarding(ctx context.Context, logger *logrus.Entry, requests []jsonrpc.Request, fwdHandler *ForwardHandler) []*jsonrpc.Response {
	forwarder, ok := fwdHandler.ActiveForwarder(ctx)
	if !ok {
		return r.RouteBatch(ctx, requests)
	}

	responses := make([]*jsonrpc.Response, len(requests))
	forwardIndices := make([]int, 0, len(requests))
	forwardRequests := make([]jsonrpc.Request, 0, len(requests))

	for i := range requests {
		if r.HasHandler(requests[i].Method) {
			responses[i] = r.RouteWithContext(ctx, &requests[i], logger)
			continue
		}
		forwardIndices = append(forwardIndices, i)
		forwardRequests = append(forwardRequests, requests[i])
	}

	if len(forwardRequests) == 0 {
		return responses
	}

	start := time.Now()
	batchResponses, err := forwarder.ForwardBatchRequest(ctx, forwardRequests)
	if err != nil {
		logger.WithError(err).Warn("Failed to forward batch request")
	}
	elapsed := time.Since(start)

	for i, idx := range forwardIndices {
		switch {
		case err != nil:
			responses[idx] = providerErrorResponse(requests[idx].ID, err)
		case i < len(batchResponses):
			responses[idx] = &batchResponses[i]
		default:
			responses[idx] = jsonrpc.NewErrorResponse(requests[idx].ID, jsonrpc.InternalError)
		}
		r.observe(requests[idx].Method, responses[idx], elapsed)
	}

	return responses
}

// writeResponses serializes responses with HTTP 200.
func (r *Router) writeResponses(w http.ResponseWriter, logger *logrus.Entry, responses []*jsonrpc.Response, batch bool) {
	data, err := jsonrpc.MarshalResponses(responses, batch)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC responses")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}

// HandleHTTPRequestWithContext handles HTTP requests with context-aware logging.
//
// This method reads at most maxRequestSize bytes, parses JSON-RPC requests
// from the body and routes them.
func (r *Router) HandleHTTPRequestWithContext(w http.ResponseWriter, req *http.Request, logger *logrus.Entry) {
	limitedBody := http.MaxBytesReader(w, req.Body, r.maxRequestSize)
	body, err := io.ReadAll(limitedBody)
	if err != nil {
		logger.WithError(err).WithField("max_size_bytes", r.maxRequestSize).Error("Request body too large")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		if _, err := w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Request entity too large"},"id":null}`)); err != nil {
			logger.WithError(err).Error("Failed to write error response")
		}
		return
	}

	r.parseAndRoute(w, req, logger, body)
}

// HandleHTTPRequest handles HTTP requests using the router's logger.
func (r *Router) HandleHTTPRequest(w http.ResponseWriter, req *http.Request) {
	r.HandleHTTPRequestWithContext(w, req, logrus.NewEntry(r.logger))
}
