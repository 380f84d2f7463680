package tado

import "context"

// V3API reaches the endpoints specific to pre-X homes.
type V3API struct {
	c *Client
}

func (c *Client) V3() V3API {
	return V3API{c: c}
}

func (a V3API) Zones(ctx context.Context) ([]Zone, error) {
	return a.c.Zones(ctx)
}

func (a V3API) Devices(ctx context.Context) ([]Device, error) {
	return a.c.Devices(ctx)
}

func (a V3API) Device(ctx context.Context, serial string) (Device, error) {
	return a.c.DeviceInfo(ctx, serial)
}

func (a V3API) TemperatureOffset(ctx context.Context, serial string) (TemperatureOffset, error) {
	return a.c.TemperatureOffset(ctx, serial)
}
