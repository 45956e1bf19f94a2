package main

import (
	"context"
	"encoding/json"

	"github.com/mutagen-io/fscore/internal/fscore/facade"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

type methodFunc func(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error)

var methods = map[string]methodFunc{
	"list":      callList,
	"tree":      callTree,
	"find":      callFind,
	"grep":      callGrep,
	"read":      callRead,
	"readMany":  callReadMany,
	"stat":      callStat,
	"statMany":  callStatMany,
	"checksum":  callChecksum,
	"write":     callWrite,
	"patch":     callPatch,
}

func decodeParams(params json.RawMessage, v interface{}) *fserrors.Error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fserrors.Newf(fserrors.InvalidInput, "invalid params: %v", err)
	}
	return nil
}

func callList(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.ListRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.List(ctx, req)
}

func callTree(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.TreeRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Tree(ctx, req)
}

func callFind(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.FindRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Find(ctx, req)
}

func callGrep(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.GrepRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Grep(ctx, req)
}

func callRead(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.ReadRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Read(ctx, req)
}

func callReadMany(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.ReadManyRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.ReadMany(ctx, req)
}

func callStat(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.StatRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Stat(ctx, req)
}

func callStatMany(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.StatManyRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.StatMany(ctx, req)
}

func callChecksum(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.ChecksumRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Checksum(ctx, req)
}

func callWrite(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.WriteRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	if ferr := client.Write(ctx, req); ferr != nil {
		return nil, ferr
	}
	return struct{ Written bool }{true}, nil
}

func callPatch(ctx context.Context, client *facade.Client, params json.RawMessage) (interface{}, *fserrors.Error) {
	var req facade.PatchRequest
	if ferr := decodeParams(params, &req); ferr != nil {
		return nil, ferr
	}
	return client.Patch(ctx, req)
}
