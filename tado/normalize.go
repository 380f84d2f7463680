package tado

// ZoneView is the consumer-facing state of a zone derived from a raw
// ZoneState. Pointer fields are nil when the payload did not carry them.
type ZoneView struct {
	CurrentTemp              *float64
	CurrentTempTimestamp     *string
	Precision                *float64
	CurrentHumidity          *float64
	CurrentHumidityTimestamp *string
	IsAway                   bool

	TargetTemp *float64

	CurrentHVACMode            string
	CurrentHVACAction          string
	CurrentFanSpeed            *string
	CurrentFanLevel            *string
	CurrentSwingMode           *string
	CurrentVerticalSwingMode   *string
	CurrentHorizontalSwingMode *string

	Power              string
	Preparation        bool
	OpenWindowDetected bool
	OpenWindow         *OpenWindow

	ACPower          *string
	ACPowerTimestamp *string

	HeatingPower           *string
	HeatingPowerTimestamp  *string
	HeatingPowerPercentage *float64

	OverlayActive                     bool
	OverlayTerminationType            *string
	OverlayTerminationTimestamp       *string
	DefaultOverlayTerminationType     *string
	DefaultOverlayTerminationDuration *int

	Connection *bool
	Available  bool
}

// Normalize derives the view of state, stores it in state.Derived and
// returns it. The order of the steps matters: heating power overrides the
// action derived from AC power, and a missing overlay forces the smart
// schedule whatever the setting says.
func Normalize(state *ZoneState) ZoneView {
	var v ZoneView
	setting := state.Setting

	if sensors := state.SensorDataPoints; sensors != nil {
		if inside := sensors.InsideTemperature; inside != nil {
			v.CurrentTemp = ptr(inside.Celsius)
			v.CurrentTempTimestamp = inside.Timestamp
			v.Precision = ptr(inside.Precision.Celsius)
		}
		if humidity := sensors.Humidity; humidity != nil {
			v.CurrentHumidity = ptr(humidity.Percentage)
			v.CurrentHumidityTimestamp = ptr(humidity.Timestamp)
		}
		v.IsAway = state.TadoMode == tadoModeAway
		v.CurrentHVACAction = ActionOff
	}

	// Powered off devices carry no temperature.
	if setting.Temperature != nil {
		v.TargetTemp = ptr(setting.Temperature.Celsius)
	}

	v.CurrentHVACMode = ModeOff
	if setting.Mode != nil {
		v.CurrentHVACMode = *setting.Mode
	} else if mode, ok := typeToMode[setting.Type]; ok {
		v.CurrentHVACMode = mode
	}

	v.CurrentSwingMode = setting.Swing
	v.CurrentVerticalSwingMode = setting.VerticalSwing
	v.CurrentHorizontalSwingMode = setting.HorizontalSwing

	v.Power = setting.Power
	poweredOn := v.Power == PowerOn
	if poweredOn {
		v.CurrentHVACAction = ActionIdle
	}

	switch {
	case setting.FanSpeed != nil:
		v.CurrentFanSpeed = ptr(*setting.FanSpeed)
	case setting.Type == TypeAirConditioning:
		v.CurrentFanSpeed = ptr(onOff(poweredOn, FanSpeedAuto, FanSpeedOff))
	}
	switch {
	case setting.FanLevel != nil:
		v.CurrentFanLevel = ptr(*setting.FanLevel)
	case setting.Type == TypeAirConditioning:
		v.CurrentFanLevel = ptr(onOff(poweredOn, FanLevelAuto, FanLevelOff))
	}

	v.Preparation = present(state.Preparation)
	v.OpenWindowDetected = present(state.OpenWindowDetected)
	v.OpenWindow = state.OpenWindow

	if ac := state.ActivityDataPoints.AcPower; ac != nil {
		v.ACPower = ptr(ac.Value)
		v.ACPowerTimestamp = ptr(ac.Timestamp)
		if ac.Value == PowerOn && poweredOn {
			action, ok := modeToAction[v.CurrentHVACMode]
			if !ok {
				action = ActionCooling
			}
			v.CurrentHVACAction = action
		}
	}

	v.OverlayActive = v.CurrentHVACMode != ModeSmartSchedule

	if heating := state.ActivityDataPoints.HeatingPower; heating != nil {
		v.HeatingPower = heating.Value
		v.HeatingPowerTimestamp = ptr(heating.Timestamp)
		percentage := 0.0
		if heating.Percentage != nil {
			percentage = *heating.Percentage
		}
		v.HeatingPowerPercentage = ptr(percentage)
		if percentage > 0 && poweredOn {
			v.CurrentHVACAction = ActionHeating
		}
	}

	if state.Overlay != nil {
		if term := state.Overlay.Termination; term != nil {
			v.OverlayTerminationType = ptr(term.Type)
			v.OverlayTerminationTimestamp = term.ProjectedExpiry
		}
	} else {
		v.CurrentHVACMode = ModeSmartSchedule
		v.OverlayActive = false
	}

	if state.ConnectionState != nil {
		v.Connection = ptr(state.ConnectionState.Value)
	}
	v.Available = state.Link.State != linkOffline

	if cond := state.TerminationCondition; cond != nil {
		if cond.Type != nil && *cond.Type != "" {
			v.DefaultOverlayTerminationType = cond.Type
		}
		v.DefaultOverlayTerminationDuration = cond.DurationInSeconds
	}

	state.Derived = v
	return v
}

func onOff(on bool, whenOn, whenOff string) string {
	if on {
		return whenOn
	}
	return whenOff
}

func ptr[T any](v T) *T {
	return &v
}
