package server

import (
	"context"
	"encoding/json"

	"github.com/mobile-next/wintest/commands"
	"github.com/mobile-next/wintest/gate"
)

const (
	methodToolsList = "tools.list"
	methodShutdown  = "server.shutdown"
)

// execute runs a JSON-RPC method. Tool names map straight onto the executor.
func (s *Server) execute(ctx context.Context, method string, params json.RawMessage) (interface{}, *rpcError) {
	switch method {
	case methodToolsList:
		return commands.ListTools(), nil
	case methodShutdown:
		s.requestShutdown()
		return okResponse, nil
	}

	if _, err := gate.Lookup(method); err != nil {
		return nil, &rpcError{code: ErrCodeMethodNotFound, message: errTitleMethodNotFound, data: "Method '" + method + "' not found"}
	}

	response := s.executor.Invoke(ctx, method, params)
	if response.Status == "error" {
		return nil, toRPCError(response)
	}
	return response.Data, nil
}

// toRPCError keeps the tool error code visible to clients.
func toRPCError(response *commands.CommandResponse) *rpcError {
	code, title := ErrCodeServerError, errTitleServerError
	if response.Code == "INVALID_PARAMS" {
		code, title = ErrCodeInvalidParams, errTitleInvalidParams
	}

	return &rpcError{
		code:    code,
		message: title,
		data: map[string]interface{}{
			"code":    response.Code,
			"message": response.Error,
		},
	}
}
