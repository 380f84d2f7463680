package tado

const meJSON = `{
  "name": "Alice Example",
  "email": "alice@example.com",
  "id": "5f1ee0b3",
  "username": "alice@example.com",
  "locale": "en_US",
  "homes": [{"id": 1, "name": "Home"}]
}`

const homePreXJSON = `{"id": 1, "name": "Home", "generation": "PRE_LINE_X", "dateTimeZone": "Europe/Amsterdam", "temperatureUnit": "CELSIUS"}`

const homeLineXJSON = `{"id": 1, "name": "Home", "generation": "LINE_X"}`

const zonesJSON = `[{
  "id": 1,
  "name": "Living",
  "type": "HEATING",
  "dateCreated": "2023-01-14T14:27:07.000Z",
  "deviceTypes": ["VA02"],
  "devices": [{
    "deviceType": "VA02",
    "serialNo": "VA1234567890",
    "shortSerialNo": "VA1234567890",
    "currentFwVersion": "215.1",
    "connectionState": {"value": true, "timestamp": "2024-08-04T09:20:08.370Z"},
    "characteristics": {"capabilities": ["INSIDE_TEMPERATURE_MEASUREMENT", "IDENTIFY"]},
    "mountingState": {"value": "CALIBRATED", "timestamp": "2023-01-14T14:30:00.000Z"},
    "mountingStateWithError": "CALIBRATED",
    "batteryState": "NORMAL",
    "childLockEnabled": false,
    "duties": ["ZONE_UI", "ZONE_LEADER"]
  }],
  "reportAvailable": false,
  "showScheduleSetup": false,
  "supportsDazzle": true,
  "dazzleEnabled": true,
  "dazzleMode": {"supported": true, "enabled": true},
  "openWindowDetection": {"supported": true, "enabled": true, "timeoutInSeconds": 900}
}]`

const devicesJSON = `[{
  "deviceType": "VA02",
  "serialNo": "VA1234567890",
  "shortSerialNo": "VA1234567890",
  "currentFwVersion": "215.1",
  "connectionState": {"value": true, "timestamp": "2024-08-04T09:20:08.370Z"},
  "characteristics": {"capabilities": ["INSIDE_TEMPERATURE_MEASUREMENT", "IDENTIFY"]},
  "batteryState": "NORMAL",
  "childLockEnabled": true
}, {
  "deviceType": "IB01",
  "serialNo": "IB0000000001",
  "shortSerialNo": "IB0000000001",
  "currentFwVersion": "92.1",
  "connectionState": {"value": false, "timestamp": "2024-08-04T09:20:08.370Z"},
  "characteristics": {"capabilities": []},
  "inPairingMode": false
}]`

const offsetJSON = `{"celsius": -1.5, "fahrenheit": -2.7}`

const heatingStateJSON = `{
  "tadoMode": "HOME",
  "geolocationOverride": false,
  "geolocationOverrideDisableTime": null,
  "preparation": null,
  "setting": {"type": "HEATING", "power": "ON", "temperature": {"celsius": 20.5, "fahrenheit": 68.9}},
  "overlayType": "MANUAL",
  "overlay": {
    "type": "MANUAL",
    "setting": {"type": "HEATING", "power": "ON", "temperature": {"celsius": 20.5, "fahrenheit": 68.9}},
    "termination": {"type": "MANUAL", "typeSkillBasedApp": "MANUAL", "projectedExpiry": null}
  },
  "openWindow": null,
  "nextScheduleChange": {"start": "2024-08-04T10:00:00Z", "setting": {"type": "HEATING", "power": "ON", "temperature": {"celsius": 18.0, "fahrenheit": 64.4}}},
  "nextTimeBlock": {"start": "2024-08-04T10:00:00.000Z"},
  "link": {"state": "ONLINE"},
  "activityDataPoints": {"heatingPower": {"type": "PERCENTAGE", "percentage": 12.5, "timestamp": "2024-08-04T09:20:08.370Z"}},
  "sensorDataPoints": {
    "insideTemperature": {"celsius": 21.5, "fahrenheit": 70.7, "timestamp": "2024-08-04T09:20:08.370Z", "type": "TEMPERATURE", "precision": {"celsius": 0.1, "fahrenheit": 0.1}},
    "humidity": {"type": "PERCENTAGE", "percentage": 40.2, "timestamp": "2024-08-04T09:20:08.370Z"}
  },
  "terminationCondition": {"type": "MANUAL"}
}`

const zoneStatesJSON = `{"zoneStates": {"1": ` + heatingStateJSON + `}}`

const weatherJSON = `{
  "solarIntensity": {"type": "PERCENTAGE", "percentage": 68.1, "timestamp": "2024-08-04T09:20:08.370Z"},
  "outsideTemperature": {"celsius": 22.3, "fahrenheit": 72.1, "timestamp": "2024-08-04T09:20:08.370Z", "type": "TEMPERATURE", "precision": {"celsius": 0.01, "fahrenheit": 0.01}},
  "weatherState": {"type": "WEATHER_STATE", "value": "SUN", "timestamp": "2024-08-04T09:20:08.370Z"}
}`

const homeStateJSON = `{"presence": "HOME", "presenceLocked": true, "showSwitchToAutoGeofencingButton": false}`

const mobileDevicesJSON = `[{
  "name": "Phone",
  "id": 1234,
  "settings": {"geoTrackingEnabled": true, "specialOffersEnabled": false, "onDemandLogRetrievalEnabled": false, "pushNotifications": {"lowBatteryReminder": true}},
  "location": {"stale": false, "atHome": true, "bearingFromHome": {"degrees": 90.0, "radians": 1.5708}, "relativeDistanceFromHomeFence": 0.0},
  "deviceMetadata": {"platform": "Android", "osVersion": "14", "model": "Pixel", "locale": "nl"}
}]`

const acCapabilitiesJSON = `{
  "type": "AIR_CONDITIONING",
  "COOL": {"temperatures": {"celsius": {"min": 16, "max": 30, "step": 1.0}, "fahrenheit": {"min": 61, "max": 86, "step": 1.0}}, "fanLevel": ["LEVEL1", "LEVEL2", "AUTO"], "verticalSwing": ["OFF", "ON"], "horizontalSwing": ["OFF", "ON"]},
  "DRY": {"fanSpeeds": ["AUTO"]},
  "FAN": {"fanLevel": ["LEVEL1", "AUTO"]}
}`

const heatingCapabilitiesJSON = `{"type": "HEATING", "temperatures": {"celsius": {"min": 5, "max": 25, "step": 0.1}, "fahrenheit": {"min": 41, "max": 77, "step": 0.1}}}`

const roomsAndDevicesJSON = `{
  "rooms": [{
    "roomId": 1,
    "roomName": "Living",
    "deviceManualControlTermination": {"type": "MANUAL", "durationInSeconds": null},
    "devices": [{
      "serialNumber": "VA9876543210",
      "type": "VA04",
      "firmwareVersion": "243.1",
      "connection": {"state": "CONNECTED"},
      "batteryState": "NORMAL",
      "temperatureAsMeasured": 21.2,
      "temperatureOffset": 0.5,
      "mountingState": "CALIBRATED",
      "childLockEnabled": false
    }],
    "zoneControllerAssignable": false,
    "zoneControllers": [],
    "roomLinkAvailable": false
  }],
  "otherDevices": [{
    "serialNumber": "IB9876543210",
    "type": "IB02",
    "firmwareVersion": "243.1",
    "connection": {"state": "DISCONNECTED"}
  }]
}`
