package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/gotado/tado"
)

func meCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account and its homes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), me, func() [][]string {
				rows := [][]string{{"NAME", "EMAIL", "HOME", "HOME ID"}}
				for _, home := range me.Homes {
					rows = append(rows, []string{me.Name, me.Email, home.Name, strconv.Itoa(home.ID)})
				}
				return rows
			})
		},
	}
}

func homeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the home record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			home, err := client.Home(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), home, func() [][]string {
				line := "-"
				if home.Generation != nil {
					line = string(*home.Generation)
				}
				return [][]string{
					{"ID", "NAME", "LINE", "TIMEZONE"},
					{strconv.Itoa(home.ID), home.Name, line, orDash(home.DateTimeZone)},
				}
			})
		},
	}
}

func zonesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			zones, err := client.Zones(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), zones, func() [][]string {
				rows := [][]string{{"ID", "ZONE", "TYPE", "DEVICES"}}
				for _, zone := range zones {
					rows = append(rows, []string{strconv.Itoa(zone.ID), zone.Name, zone.Type, strconv.Itoa(len(zone.Devices))})
				}
				return rows
			})
		},
	}
}

func stateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state [zone]",
		Short: "Show the normalized state of all zones, or one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.session(ctx)
			if err != nil {
				return err
			}

			views := map[string]tado.ZoneView{}
			if len(args) == 1 {
				zone, err := lookupZone(ctx, client, args[0])
				if err != nil {
					return err
				}
				state, err := client.ZoneState(ctx, zone.ID)
				if err != nil {
					return err
				}
				views[strconv.Itoa(zone.ID)] = state.Derived
			} else {
				states, err := client.ZoneStates(ctx)
				if err != nil {
					return err
				}
				for id, state := range states {
					views[id] = state.Derived
				}
			}

			return a.out.print(cmd.OutOrStdout(), views, func() [][]string {
				ids := make([]string, 0, len(views))
				for id := range views {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				rows := [][]string{{"ZONE", "TEMP", "HUMIDITY", "TARGET", "MODE", "ACTION", "OVERLAY", "AVAILABLE"}}
				for _, id := range ids {
					v := views[id]
					rows = append(rows, []string{
						id, celsius(v.CurrentTemp), percent(v.CurrentHumidity), celsius(v.TargetTemp),
						v.CurrentHVACMode, v.CurrentHVACAction, yesNo(v.OverlayActive), yesNo(v.Available),
					})
				}
				return rows
			})
		},
	}
}

func devicesCmd(a *app) *cobra.Command {
	var unified bool
	cmd := &cobra.Command{
		Use:   "devices [serial]",
		Short: "List devices, or show one by serial",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.session(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				device, err := client.DeviceInfo(ctx, args[0])
				if err != nil {
					return err
				}
				return a.out.print(cmd.OutOrStdout(), device, func() [][]string {
					return deviceRows([]tado.Device{device})
				})
			}

			if unified {
				devices, err := client.UnifiedDevices(ctx)
				if err != nil {
					return err
				}
				return a.out.print(cmd.OutOrStdout(), devices, func() [][]string {
					rows := [][]string{{"SERIAL", "TYPE", "FIRMWARE", "CONNECTED", "BATTERY", "OFFSET", "CHILD LOCK"}}
					for _, d := range devices {
						lock := "-"
						if d.ChildLockEnabled != nil {
							lock = yesNo(*d.ChildLockEnabled)
						}
						rows = append(rows, []string{
							d.Serial, d.DeviceType, d.FirmwareVersion, yesNo(d.ConnectionState),
							orDash(d.BatteryState), celsius(d.TemperatureOffset), lock,
						})
					}
					return rows
				})
			}

			devices, err := client.Devices(ctx)
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), devices, func() [][]string {
				return deviceRows(devices)
			})
		},
	}
	cmd.Flags().BoolVar(&unified, "unified", false, "merge v3 and X devices into one shape, with offsets")
	return cmd
}

func deviceRows(devices []tado.Device) [][]string {
	rows := [][]string{{"SERIAL", "TYPE", "FIRMWARE", "CONNECTED", "BATTERY", "CAPABILITIES"}}
	for _, d := range devices {
		rows = append(rows, []string{
			d.SerialNo, d.DeviceType, d.CurrentFwVersion, yesNo(d.ConnectionState.Value),
			orDash(d.BatteryState), strings.Join(d.Characteristics.Capabilities, ","),
		})
	}
	return rows
}

func mobileDevicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mobile-devices",
		Short: "List mobile devices and their geofencing state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			devices, err := client.MobileDevices(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), devices, func() [][]string {
				rows := [][]string{{"ID", "NAME", "GEO TRACKING", "AT HOME"}}
				for _, d := range devices {
					atHome := "-"
					if d.Location != nil {
						atHome = yesNo(d.Location.AtHome)
					}
					rows = append(rows, []string{strconv.Itoa(d.ID), d.Name, yesNo(d.Settings.GeoTrackingEnabled), atHome})
				}
				return rows
			})
		},
	}
}

func weatherCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "weather",
		Short: "Show the weather at the home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			weather, err := client.Weather(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), weather, func() [][]string {
				return [][]string{
					{"OUTSIDE", "SOLAR", "STATE"},
					{
						celsius(&weather.OutsideTemperature.Celsius),
						percent(&weather.SolarIntensity.Percentage),
						weather.WeatherState.Value,
					},
				}
			})
		},
	}
}

func homeStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home-state",
		Short: "Show presence and whether auto geofencing can be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			state, err := client.HomeState(cmd.Context())
			if err != nil {
				return err
			}
			auto, err := client.AutoGeofencingSupported(cmd.Context())
			if err != nil {
				return err
			}
			value := map[string]any{"homeState": state, "autoGeofencingSupported": auto}
			return a.out.print(cmd.OutOrStdout(), value, func() [][]string {
				return [][]string{
					{"PRESENCE", "LOCKED", "AUTO GEOFENCING"},
					{state.Presence, yesNo(state.PresenceLocked), yesNo(auto)},
				}
			})
		},
	}
}

func capabilitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <zone>",
		Short: "Show what a zone supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.session(ctx)
			if err != nil {
				return err
			}
			zone, err := lookupZone(ctx, client, args[0])
			if err != nil {
				return err
			}
			caps, err := client.Capabilities(ctx, zone.ID)
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), caps, func() [][]string {
				rows := [][]string{{"TYPE", "MIN", "MAX", "STEP"}}
				if caps.Temperatures != nil {
					c := caps.Temperatures.Celsius
					rows = append(rows, []string{caps.Type, fmt.Sprint(c.Min), fmt.Sprint(c.Max), fmt.Sprint(c.Step)})
				} else {
					rows = append(rows, []string{caps.Type, "-", "-", "-"})
				}
				return rows
			})
		},
	}
}

func offsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "offset <serial>",
		Short: "Show the temperature offset of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			offset, err := client.TemperatureOffset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.out.print(cmd.OutOrStdout(), offset, func() [][]string {
				return [][]string{
					{"SERIAL", "CELSIUS", "FAHRENHEIT"},
					{args[0], fmt.Sprint(offset.Celsius), fmt.Sprint(offset.Fahrenheit)},
				}
			})
		},
	}
}

func dayReportCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "day-report <zone>",
		Short: "Summarize a zone's history for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				var err error
				if day, err = time.ParseInLocation(time.DateOnly, date, time.Local); err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
			}
			ctx := cmd.Context()
			client, err := a.session(ctx)
			if err != nil {
				return err
			}
			zone, err := lookupZone(ctx, client, args[0])
			if err != nil {
				return err
			}
			report, err := client.DayReport(ctx, zone.ID, day)
			if err != nil {
				return err
			}
			summary := report.Summary()
			return a.out.print(cmd.OutOrStdout(), report, func() [][]string {
				return [][]string{
					{"DATE", "MIN", "MEAN", "MAX", "HUMIDITY", "HEATING", "DEMAND"},
					{
						day.Format(time.DateOnly),
						celsius(summary.MinTemp), celsius(summary.MeanTemp), celsius(summary.MaxTemp),
						percent(summary.MeanHumidity),
						strconv.FormatFloat(summary.HeatingHours, 'f', 1, 64) + "h",
						percent(&summary.HeatingDemand),
					},
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day, YYYY-MM-DD (default today)")
	return cmd
}
