// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const billSyncServiceName = "billsync.v1.BillSync"

// Full method names, as used by clients and interceptors.
const (
	FullSyncMethod  = "/" + billSyncServiceName + "/FullSync"
	DeltaSyncMethod = "/" + billSyncServiceName + "/DeltaSync"
)

// DeltaSyncCall is the request message of DeltaSync. BillID takes the place
// of the {id} path segment of the HTTP route.
type DeltaSyncCall struct {
	BillID  string                  `json:"billId"`
	Request models.DeltaSyncRequest `json:"request"`
}

// BillSyncServer is the server API of billsync.v1.BillSync.
type BillSyncServer interface {
	FullSync(ctx context.Context, req *models.FullSyncRequest) (*models.FullSyncResponse, error)
	DeltaSync(ctx context.Context, call *DeltaSyncCall) (*models.DeltaSyncResponse, error)
}

var billSyncServiceDesc = grpc.ServiceDesc{
	ServiceName: billSyncServiceName,
	HandlerType: (*BillSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FullSync", Handler: fullSyncHandler},
		{MethodName: "DeltaSync", Handler: deltaSyncHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "billsync/v1",
}

func fullSyncHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(models.FullSyncRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BillSyncServer).FullSync(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullSyncMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BillSyncServer).FullSync(ctx, req.(*models.FullSyncRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deltaSyncHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeltaSyncCall)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BillSyncServer).DeltaSync(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeltaSyncMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BillSyncServer).DeltaSync(ctx, req.(*DeltaSyncCall))
	}
	return interceptor(ctx, in, info, handler)
}

// FullSync implements [BillSyncServer].
func (h *Handler) FullSync(ctx context.Context, req *models.FullSyncRequest) (*models.FullSyncResponse, error) {
	resp, err := h.services.SyncService.ApplyFullSync(ctx, utils.ActorFromContext(ctx), *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// DeltaSync implements [BillSyncServer].
func (h *Handler) DeltaSync(ctx context.Context, call *DeltaSyncCall) (*models.DeltaSyncResponse, error) {
	if call.BillID == "" {
		return nil, errMissingBillID
	}
	resp, err := h.services.SyncService.ApplyDelta(ctx, utils.ActorFromContext(ctx), call.BillID, call.Request)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}
