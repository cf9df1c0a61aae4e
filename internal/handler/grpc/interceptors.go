// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

// Metadata keys, lower-cased as gRPC transmits them.
const (
	clientIDKey      = "x-client-id"
	traceIDKey       = "x-trace-id"
	authorizationKey = "authorization"
)

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// recoverer turns a panic in a handler into codes.Internal.
func (h *Handler) recoverer(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Str("method", info.FullMethod).Interface("panic", rec).Msg("gRPC handler panicked")
			resp, err = nil, errInternal
		}
	}()
	return next(ctx, req)
}

// withLogging attaches a trace-tagged logger to ctx and logs every call.
func (h *Handler) withLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	traceID := firstValue(md, traceIDKey)
	if traceID == "" {
		traceID = uuid.NewString()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})
	ctx = l.WithContext(ctx)
	_ = grpc.SetHeader(ctx, metadata.Pairs(traceIDKey, traceID))

	start := time.Now()
	resp, err := next(ctx, req)

	l.Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Msg("gRPC call")

	return resp, err
}

// auth identifies the caller the same way the HTTP auth middleware does:
// guests pass with their client id, bearer tokens must be valid.
func (h *Handler) auth(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	log := logger.FromContext(ctx)

	if clientID := firstValue(md, clientIDKey); clientID != "" {
		ctx = utils.WithClientID(ctx, clientID)
	}

	header := firstValue(md, authorizationKey)
	if header == "" {
		return next(ctx, req)
	}

	tokenString, err := utils.ParseBearerToken(header)
	if err != nil {
		log.Debug().Err(err).Str("func", "*Handler.auth").Msg("malformed authorization metadata")
		return nil, errInvalidAuthorizationHeader
	}
	if h.tokenSignKey == "" {
		return nil, errAuthNotConfigured
	}

	token, err := utils.ValidateAndParseJWTToken(tokenString, h.tokenSignKey, h.tokenIssuer)
	if err != nil {
		log.Debug().Err(err).Str("func", "*Handler.auth").Msg("token rejected")
		return nil, errTokenRejected
	}

	return next(utils.WithUserID(ctx, token.UserID), req)
}
