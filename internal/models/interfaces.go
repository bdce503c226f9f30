package models

import "context"

type StationClient interface {
	FetchAll(ctx context.Context) (StationMap, error)
	FetchOne(ctx context.Context, stationID string) (*Station, error)
}
