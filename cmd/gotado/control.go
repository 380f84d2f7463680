package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/gotado/tado"
)

type overlayFlags struct {
	termination     string
	duration        time.Duration
	zoneType        string
	power           string
	mode            string
	fanSpeed        string
	fanLevel        string
	swing           string
	verticalSwing   string
	horizontalSwing string
}

// request builds the overlay for `overlay set <zone> [temp]`. A duration
// without an explicit termination implies a timer.
func (f overlayFlags) request(args []string) (tado.OverlayRequest, error) {
	req := tado.OverlayRequest{
		Termination:     strings.ToUpper(f.termination),
		Duration:        f.duration,
		Type:            strings.ToUpper(f.zoneType),
		Power:           strings.ToUpper(f.power),
		Mode:            strings.ToUpper(f.mode),
		FanSpeed:        strings.ToUpper(f.fanSpeed),
		FanLevel:        strings.ToUpper(f.fanLevel),
		Swing:           strings.ToUpper(f.swing),
		VerticalSwing:   strings.ToUpper(f.verticalSwing),
		HorizontalSwing: strings.ToUpper(f.horizontalSwing),
	}
	if req.Termination == "" && req.Duration > 0 {
		req.Termination = tado.TerminationTimer
	}
	switch req.Termination {
	case "", tado.TerminationManual, tado.TerminationNextTimeBlock:
	case tado.TerminationTimer:
		if req.Duration <= 0 {
			return req, fmt.Errorf("--duration is required with a %s termination", tado.TerminationTimer)
		}
	default:
		return req, fmt.Errorf("unknown termination %q", f.termination)
	}

	if len(args) > 1 {
		temp, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return req, fmt.Errorf("invalid temperature %q", args[1])
		}
		req.Temperature = &temp
	}
	if req.Power == tado.PowerOff && req.Temperature != nil {
		return req, fmt.Errorf("a temperature cannot be set with power OFF")
	}
	return req, nil
}

func overlayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Set or clear a manual overlay on a zone",
	}
	cmd.AddCommand(overlaySetCmd(a), overlayResetCmd(a))
	return cmd
}

func overlaySetCmd(a *app) *cobra.Command {
	var flags overlayFlags
	cmd := &cobra.Command{
		Use:   "set <zone> [temperature]",
		Short: "Override the schedule of a zone",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args)
			if err != nil {
				return err
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
			if err := client.SetZoneOverlay(ctx, zone.ID, req); err != nil {
				return err
			}

			summary := zone.Name
			if req.Temperature != nil {
				summary += " -> " + celsius(req.Temperature)
			}
			return a.out.done(cmd.OutOrStdout(), summary, map[string]any{
				"zone":        zone.ID,
				"temperature": req.Temperature,
				"termination": req.Termination,
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.termination, "termination", "", "MANUAL, TIMER or NEXT_TIME_BLOCK (default MANUAL)")
	f.DurationVar(&flags.duration, "duration", 0, "overlay duration, implies TIMER")
	f.StringVar(&flags.zoneType, "type", "", "zone type (default HEATING)")
	f.StringVar(&flags.power, "power", "", "ON or OFF (default ON)")
	f.StringVar(&flags.mode, "mode", "", "AC mode: COOL, HEAT, DRY, FAN or AUTO")
	f.StringVar(&flags.fanSpeed, "fan-speed", "", "AC fan speed")
	f.StringVar(&flags.fanLevel, "fan-level", "", "AC fan level")
	f.StringVar(&flags.swing, "swing", "", "AC swing")
	f.StringVar(&flags.verticalSwing, "vertical-swing", "", "AC vertical swing")
	f.StringVar(&flags.horizontalSwing, "horizontal-swing", "", "AC horizontal swing")
	return cmd
}

func overlayResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <zone>",
		Short: "Return a zone to its smart schedule",
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
			if err := client.ResetZoneOverlay(ctx, zone.ID); err != nil {
				return err
			}
			return a.out.done(cmd.OutOrStdout(), zone.Name+" -> schedule", map[string]any{"zone": zone.ID})
		},
	}
}

func presenceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "presence <HOME|AWAY|AUTO>",
		Short:     "Lock the home presence, or return it to geofencing",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{tado.PresenceHome, tado.PresenceAway, tado.PresenceAuto},
		RunE: func(cmd *cobra.Command, args []string) error {
			presence := strings.ToUpper(args[0])
			switch presence {
			case tado.PresenceHome, tado.PresenceAway, tado.PresenceAuto:
			default:
				return fmt.Errorf("presence must be HOME, AWAY or AUTO")
			}
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SetPresence(cmd.Context(), presence); err != nil {
				return err
			}
			return a.out.done(cmd.OutOrStdout(), "presence "+presence, map[string]any{"presence": presence})
		},
	}
}

func childLockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "child-lock <serial> <on|off>",
		Short: "Enable or disable the child lock of a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SetChildLock(cmd.Context(), args[0], enabled); err != nil {
				return err
			}
			return a.out.done(cmd.OutOrStdout(), "child lock "+args[0]+" "+strings.ToLower(args[1]),
				map[string]any{"serial": args[0], "enabled": enabled})
		},
	}
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
}

func meterCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "meter <reading>",
		Short: "Submit an energy meter reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reading, err := strconv.Atoi(args[0])
			if err != nil || reading < 0 {
				return fmt.Errorf("invalid reading %q", args[0])
			}
			when := time.Now()
			if date != "" {
				when, err = time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
			}
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SetMeterReading(cmd.Context(), reading, when); err != nil {
				return err
			}
			return a.out.done(cmd.OutOrStdout(), fmt.Sprintf("meter %d on %s", reading, when.Format(time.DateOnly)),
				map[string]any{"reading": reading, "date": when.Format(time.DateOnly)})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reading date, YYYY-MM-DD (default today)")
	return cmd
}
