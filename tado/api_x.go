package tado

import (
	"context"
	"net/http"
)

// XAPI reaches the hops host serving tado X homes.
type XAPI struct {
	c *Client
}

func (c *Client) X() XAPI {
	return XAPI{c: c}
}

func (a XAPI) RoomsAndDevices(ctx context.Context) (RoomsAndDevices, error) {
	homeID, err := a.c.HomeID(ctx)
	if err != nil {
		return RoomsAndDevices{}, err
	}
	data, err := a.c.request(ctx, http.MethodGet, EndpointX, homePath(homeID, "roomsAndDevices"), nil)
	if err != nil {
		return RoomsAndDevices{}, err
	}
	return decode[RoomsAndDevices](data, "RoomsAndDevices")
}
