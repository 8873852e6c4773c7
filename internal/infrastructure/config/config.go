package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for Homeflow.
// It maps directly to config.yaml structure.
type Config struct {
	// Home contains house-level identification.
	Home HomeConfig `yaml:"home"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// MQTT configures the broker connection.
	MQTT MQTTConfig `yaml:"mqtt"`

	// Ntfy configures push notifications.
	Ntfy NtfyConfig `yaml:"ntfy"`

	// Hue configures the Philips Hue bridge integration.
	Hue HueConfig `yaml:"hue"`

	// InfluxDB configures optional sensor telemetry.
	InfluxDB InfluxDBConfig `yaml:"influxdb"`

	// History configures the on-disk event journal.
	History HistoryConfig `yaml:"history"`

	// Presence configures the presence aggregator.
	Presence PresenceConfig `yaml:"presence"`

	// Debug configures the MQTT debug mirror.
	Debug DebugConfig `yaml:"debug"`

	// Devices lists every device the dispatcher should own.
	Devices DevicesConfig `yaml:"devices"`

	// Hallway configures the hallway light automation.
	Hallway HallwayConfig `yaml:"hallway"`

	// Schedules configures cron-driven actions.
	Schedules SchedulesConfig `yaml:"schedules"`
}

// HomeConfig identifies this installation.
type HomeConfig struct {
	// ID is a short identifier used in the MQTT client ID and log fields.
	ID string `yaml:"id"`

	// Name is a human-readable label for the house.
	Name string `yaml:"name"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format selects the handler: json or text.
	Format string `yaml:"format"`

	// Output selects the destination: stdout or stderr.
	Output string `yaml:"output"`
}

// MQTTConfig configures the connection to the MQTT broker.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig identifies the broker endpoint.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	TLS      bool   `yaml:"tls"`
}

// MQTTAuthConfig carries optional broker credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig tunes automatic reconnection backoff (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// NtfyConfig configures push notifications via an ntfy server.
type NtfyConfig struct {
	// Enabled turns notification delivery on. When false, notifications
	// are logged and dropped.
	Enabled bool `yaml:"enabled"`

	// URL is the ntfy server base URL.
	URL string `yaml:"url"`

	// Topic is the ntfy topic notifications are published to.
	Topic string `yaml:"topic"`

	// Timeout is the HTTP request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// GetTimeout returns the notification request timeout as a Duration.
func (c NtfyConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// HueConfig configures the Philips Hue bridge.
type HueConfig struct {
	// Enabled turns the Hue integration on.
	Enabled bool `yaml:"enabled"`

	// Addr is the bridge host or host:port.
	Addr string `yaml:"addr"`

	// Token is the bridge API username. Set via HOMEFLOW_HUE_TOKEN.
	Token string `yaml:"token"`

	// Timeout is the HTTP request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// PresenceFlagID is the CLIP generic flag sensor mirroring presence.
	PresenceFlagID int `yaml:"presence_flag_id"`

	// DarknessFlagID is the CLIP generic flag sensor mirroring darkness.
	DarknessFlagID int `yaml:"darkness_flag_id"`

	// Groups lists the Hue light groups exposed as devices.
	Groups []HueGroupConfig `yaml:"groups"`
}

// GetTimeout returns the bridge request timeout as a Duration.
func (c HueConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// HueGroupConfig describes one Hue light group device.
type HueGroupConfig struct {
	// ID is the device identifier, e.g. "living_room_lights".
	ID string `yaml:"id"`

	// GroupID is the numeric Hue group to control.
	GroupID int `yaml:"group_id"`

	// SceneID is the scene recalled when the group is turned on.
	SceneID string `yaml:"scene_id"`
}

// InfluxDBConfig configures optional time-series telemetry.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`

	// BatchSize is the number of points per write batch.
	BatchSize int `yaml:"batch_size"`

	// FlushInterval is the batch flush interval in seconds.
	FlushInterval int `yaml:"flush_interval"`
}

// HistoryConfig configures the SQLite event journal.
type HistoryConfig struct {
	// Enabled turns event journaling on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is the lock wait timeout in seconds.
	BusyTimeout int `yaml:"busy_timeout"`

	// MaxEntries caps the journal size; older rows are pruned.
	MaxEntries int `yaml:"max_entries"`
}

// PresenceConfig configures the presence aggregator.
type PresenceConfig struct {
	// Topic is the subscription pattern for per-person presence,
	// e.g. "homeflow/presence/+". The wildcard segment names the source.
	Topic string `yaml:"topic"`
}

// DebugConfig configures the retained MQTT mirror of derived conditions.
type DebugConfig struct {
	Enabled bool `yaml:"enabled"`

	// Topic is the base topic; presence and darkness are published
	// beneath it.
	Topic string `yaml:"topic"`
}

// DevicesConfig lists every configured device by protocol.
type DevicesConfig struct {
	Zigbee []ZigbeeDeviceConfig `yaml:"zigbee"`
	Kasa   []KasaDeviceConfig   `yaml:"kasa"`
	WOL    []WOLDeviceConfig    `yaml:"wol"`
}

// Zigbee device kinds accepted in config.
const (
	ZigbeeKindOutlet      = "outlet"
	ZigbeeKindContact     = "contact"
	ZigbeeKindLight       = "light"
	ZigbeeKindLightSensor = "light_sensor"
	ZigbeeKindRemote      = "remote"
	ZigbeeKindWallSwitch  = "wall_switch"
	ZigbeeKindWasher      = "washer"
	ZigbeeKindCover       = "cover"
)

// Outlet roles accepted in config.
const (
	OutletRoleOutlet  = "outlet"
	OutletRoleKettle  = "kettle"
	OutletRoleCharger = "charger"
)

// Contact roles accepted in config.
const (
	ContactRoleDoor   = "door"
	ContactRoleDrawer = "drawer"
	ContactRoleWindow = "window"
)

// ZigbeeDeviceConfig describes one zigbee2mqtt device.
//
// Kind selects which fields apply; Validate rejects combinations that
// make no sense for the kind.
type ZigbeeDeviceConfig struct {
	// ID is the unique device identifier, e.g. "kitchen_kettle".
	ID string `yaml:"id"`

	// Kind is one of the ZigbeeKind constants.
	Kind string `yaml:"kind"`

	// Topic is the zigbee2mqtt base topic for the device or group.
	Topic string `yaml:"topic"`

	// Role refines outlets (outlet, kettle, charger) and contacts
	// (door, drawer, window).
	Role string `yaml:"role"`

	// AutoOffTimeout arms an auto-off timer, in seconds. Required for
	// kettle outlets, optional for plain outlets.
	AutoOffTimeout int `yaml:"auto_off_timeout"`

	// PowerThreshold is the watt level below which a kettle counts as
	// idle while on.
	PowerThreshold float64 `yaml:"power_threshold"`

	// PresenceOff opts an outlet in or out of turn-off-when-everyone-left.
	// Unset derives from the role: chargers stay on, everything else
	// turns off.
	PresenceOff *bool `yaml:"presence_off"`

	// PresenceTopic turns a contact sensor into a presence trigger:
	// on open, an occupancy message is published here and cleared after
	// PresenceTimeout seconds.
	PresenceTopic string `yaml:"presence_topic"`

	// PresenceTimeout is the occupancy hold time in seconds.
	PresenceTimeout int `yaml:"presence_timeout"`

	// SingleButton marks a one-button remote: a press toggles on, a
	// hold turns off.
	SingleButton bool `yaml:"single_button"`

	// Min and Max bound the light sensor hysteresis band in lux.
	Min int `yaml:"min"`
	Max int `yaml:"max"`

	// RunningThreshold is the watt level above which a washer counts
	// as running.
	RunningThreshold float64 `yaml:"running_threshold"`
}

// GetAutoOffTimeout returns the auto-off delay as a Duration.
func (c ZigbeeDeviceConfig) GetAutoOffTimeout() time.Duration {
	return time.Duration(c.AutoOffTimeout) * time.Second
}

// GetPresenceTimeout returns the occupancy hold time as a Duration.
func (c ZigbeeDeviceConfig) GetPresenceTimeout() time.Duration {
	return time.Duration(c.PresenceTimeout) * time.Second
}

// KasaDeviceConfig describes one TP-Link Kasa smartplug.
type KasaDeviceConfig struct {
	// ID is the unique device identifier.
	ID string `yaml:"id"`

	// Addr is the plug's host or host:port (default port 9999).
	Addr string `yaml:"addr"`
}

// WOLDeviceConfig describes one wake-on-LAN target.
type WOLDeviceConfig struct {
	// ID is the unique device identifier.
	ID string `yaml:"id"`

	// MAC is the target's hardware address, e.g. "AA:BB:CC:DD:EE:FF".
	MAC string `yaml:"mac"`

	// Topic is the MQTT topic carrying activate messages.
	Topic string `yaml:"topic"`

	// Broadcast is the UDP broadcast address (default 255.255.255.255:9).
	Broadcast string `yaml:"broadcast"`
}

// HallwayConfig wires the hallway light automation to its devices.
type HallwayConfig struct {
	// Enabled turns the hallway automation on.
	Enabled bool `yaml:"enabled"`

	// Grace is how long the lights stay on after the door closes,
	// in seconds.
	Grace int `yaml:"grace"`

	// Group is the device ID of the controlled light group.
	Group string `yaml:"group"`

	// Door is the device ID of the front door contact sensor.
	Door string `yaml:"door"`

	// Trash is the device ID of the trash drawer contact sensor.
	Trash string `yaml:"trash"`

	// Switch is the device ID of the hallway wall switch.
	Switch string `yaml:"switch"`
}

// GetGrace returns the hallway grace period as a Duration.
func (c HallwayConfig) GetGrace() time.Duration {
	return time.Duration(c.Grace) * time.Second
}

// SchedulesConfig holds cron-driven actions. All expressions use the
// 6-field form with a leading seconds field.
type SchedulesConfig struct {
	// BatteryCheck fires the low-battery notification sweep.
	BatteryCheck string `yaml:"battery_check"`

	// Filter cycles an on/off device between two times of day.
	Filter DeviceCycleConfig `yaml:"filter"`

	// Curtain cycles a cover between open and closed.
	Curtain CoverCycleConfig `yaml:"curtain"`
}

// DeviceCycleConfig names an on/off device and its on/off cron times.
type DeviceCycleConfig struct {
	Device string `yaml:"device"`
	On     string `yaml:"on"`
	Off    string `yaml:"off"`
}

// CoverCycleConfig names a cover device and its open/close cron times.
type CoverCycleConfig struct {
	Device string `yaml:"device"`
	Open   string `yaml:"open"`
	Close  string `yaml:"close"`
}

// Load reads, parses, and validates configuration from a YAML file.
//
// Values are resolved in order: built-in defaults, then the YAML file,
// then HOMEFLOW_* environment variable overrides.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Home: HomeConfig{
			ID:   "home-001",
			Name: "Homeflow",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homeflow",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Ntfy: NtfyConfig{
			URL:     "https://ntfy.sh",
			Timeout: 10,
		},
		Hue: HueConfig{
			Timeout: 10,
		},
		History: HistoryConfig{
			Path:        "./data/homeflow.db",
			BusyTimeout: 5,
			MaxEntries:  10000,
		},
		Presence: PresenceConfig{
			Topic: "homeflow/presence/+",
		},
		Debug: DebugConfig{
			Topic: "homeflow/debug",
		},
	}
}

// applyEnvOverrides applies HOMEFLOW_* environment variables on top of
// file values. Only secrets and deployment-specific endpoints are
// overridable; everything else belongs in the file.
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("HOMEFLOW_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMEFLOW_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HOMEFLOW_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMEFLOW_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Notifications
	if v := os.Getenv("HOMEFLOW_NTFY_TOPIC"); v != "" {
		cfg.Ntfy.Topic = v
	}

	// Hue
	if v := os.Getenv("HOMEFLOW_HUE_TOKEN"); v != "" {
		cfg.Hue.Token = v
	}

	// InfluxDB
	if v := os.Getenv("HOMEFLOW_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// History
	if v := os.Getenv("HOMEFLOW_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Home.ID == "" {
		errs = append(errs, "home.id is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Ntfy.Enabled {
		if c.Ntfy.URL == "" {
			errs = append(errs, "ntfy.url is required when ntfy is enabled")
		}
		if c.Ntfy.Topic == "" {
			errs = append(errs, "ntfy.topic is required when ntfy is enabled (set HOMEFLOW_NTFY_TOPIC)")
		}
	}

	if c.Hue.Enabled {
		if c.Hue.Addr == "" {
			errs = append(errs, "hue.addr is required when hue is enabled")
		}
		if c.Hue.Token == "" {
			errs = append(errs, "hue.token is required when hue is enabled (set HOMEFLOW_HUE_TOKEN)")
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	if c.Presence.Topic == "" {
		errs = append(errs, "presence.topic is required")
	} else if !strings.Contains(c.Presence.Topic, "+") {
		errs = append(errs, "presence.topic must contain a + wildcard naming the source segment")
	}

	errs = append(errs, c.validateDevices()...)

	if c.Hallway.Enabled {
		if c.Hallway.Grace <= 0 {
			errs = append(errs, "hallway.grace must be positive")
		}
		if c.Hallway.Group == "" {
			errs = append(errs, "hallway.group is required when hallway is enabled")
		}
		if c.Hallway.Door == "" {
			errs = append(errs, "hallway.door is required when hallway is enabled")
		}
		if c.Hallway.Trash == "" {
			errs = append(errs, "hallway.trash is required when hallway is enabled")
		}
		if c.Hallway.Switch == "" {
			errs = append(errs, "hallway.switch is required when hallway is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateDevices checks every device entry and cross-entry ID uniqueness.
func (c *Config) validateDevices() []string {
	var errs []string
	seen := make(map[string]bool)

	checkID := func(id, where string) {
		switch {
		case id == "":
			errs = append(errs, where+": id is required")
		case seen[id]:
			errs = append(errs, where+": duplicate device id "+strconv.Quote(id))
		default:
			seen[id] = true
		}
	}

	for i, d := range c.Devices.Zigbee {
		where := fmt.Sprintf("devices.zigbee[%d]", i)
		checkID(d.ID, where)

		if d.Topic == "" {
			errs = append(errs, where+": topic is required")
		}

		switch d.Kind {
		case ZigbeeKindOutlet:
			switch d.Role {
			case "", OutletRoleOutlet, OutletRoleKettle, OutletRoleCharger:
			default:
				errs = append(errs, where+": unknown outlet role "+strconv.Quote(d.Role))
			}
			if d.Role == OutletRoleKettle {
				if d.AutoOffTimeout <= 0 {
					errs = append(errs, where+": auto_off_timeout must be positive for kettles")
				}
				if d.PowerThreshold <= 0 {
					errs = append(errs, where+": power_threshold must be positive for kettles")
				}
			}
		case ZigbeeKindContact:
			switch d.Role {
			case "", ContactRoleDoor, ContactRoleDrawer, ContactRoleWindow:
			default:
				errs = append(errs, where+": unknown contact role "+strconv.Quote(d.Role))
			}
			if d.PresenceTopic != "" && d.PresenceTimeout <= 0 {
				errs = append(errs, where+": presence_timeout must be positive when presence_topic is set")
			}
		case ZigbeeKindLightSensor:
			if d.Min <= 0 || d.Max <= 0 || d.Min >= d.Max {
				errs = append(errs, where+": light sensor needs 0 < min < max")
			}
		case ZigbeeKindWasher:
			if d.RunningThreshold <= 0 {
				errs = append(errs, where+": running_threshold must be positive for washers")
			}
		case ZigbeeKindLight, ZigbeeKindRemote, ZigbeeKindWallSwitch, ZigbeeKindCover:
		default:
			errs = append(errs, where+": unknown kind "+strconv.Quote(d.Kind))
		}
	}

	for i, d := range c.Devices.Kasa {
		where := fmt.Sprintf("devices.kasa[%d]", i)
		checkID(d.ID, where)
		if d.Addr == "" {
			errs = append(errs, where+": addr is required")
		}
	}

	for i, d := range c.Devices.WOL {
		where := fmt.Sprintf("devices.wol[%d]", i)
		checkID(d.ID, where)
		if d.MAC == "" {
			errs = append(errs, where+": mac is required")
		}
		if d.Topic == "" {
			errs = append(errs, where+": topic is required")
		}
	}

	return errs
}
