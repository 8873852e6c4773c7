// Homeflow - Reactive Home Automation Core
//
// This is the main entry point for the Homeflow controller. Homeflow
// folds independently arriving sensor events into debounced actuation
// commands across the house:
//   - zigbee2mqtt devices (outlets, contacts, lights, sensors, remotes)
//   - Philips Hue groups and CLIP condition flags over REST
//   - TP-Link Kasa smartplugs over their TCP protocol
//   - Wake-on-LAN targets driven by MQTT activate messages
//   - Presence aggregation with phone notifications via ntfy
//
// Bootstrap is staged: configuration, logging, event journal, telemetry,
// MQTT, notifications, scheduler, devices, automation wiring, dispatcher.
// Configuration problems abort startup before any device is constructed;
// collaborator failures after startup are logged and absorbed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/bridges/debug"
	"github.com/nerrad567/homeflow/internal/bridges/hue"
	"github.com/nerrad567/homeflow/internal/bridges/kasa"
	"github.com/nerrad567/homeflow/internal/bridges/wol"
	"github.com/nerrad567/homeflow/internal/bridges/zigbee"
	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
	"github.com/nerrad567/homeflow/internal/infrastructure/history"
	"github.com/nerrad567/homeflow/internal/infrastructure/influxdb"
	"github.com/nerrad567/homeflow/internal/infrastructure/logging"
	"github.com/nerrad567/homeflow/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
	"github.com/nerrad567/homeflow/internal/infrastructure/scheduler"
	"github.com/nerrad567/homeflow/internal/presence"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Homeflow",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the event journal (optional)
	var journal *history.Journal
	if cfg.History.Enabled {
		journal, err = history.Open(cfg.History)
		if err != nil {
			return fmt.Errorf("opening event journal: %w", err)
		}
		defer func() {
			log.Info("closing event journal")
			if closeErr := journal.Close(); closeErr != nil {
				log.Error("error closing event journal", "error", closeErr)
			}
		}()
		log.Info("event journal open", "path", cfg.History.Path)
	} else {
		log.Info("event journal disabled")
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the ntfy client (optional). The notifier stays a nil
	// interface when disabled so the dispatcher drops notifications.
	var notifier device.Notifier
	if cfg.Ntfy.Enabled {
		ntfyClient, err := ntfy.NewClient(cfg.Ntfy)
		if err != nil {
			return fmt.Errorf("creating ntfy client: %w", err)
		}
		notifier = ntfyClient
		log.Info("notifications enabled", "topic", cfg.Ntfy.Topic)
	} else {
		log.Info("notifications disabled")
	}

	// Create the scheduler; jobs are bound below and ticks start after
	// every binding succeeded.
	sched := scheduler.New(log)

	// Create the device manager. The recorder stays a nil interface when
	// the journal is disabled so dispatch skips journaling entirely.
	var recorder device.Recorder
	if journal != nil {
		recorder = journal
	}
	transport := &mqttTransport{client: mqttClient, qos: byte(cfg.MQTT.QoS)}
	manager := device.NewManager(transport, notifier, recorder, log)

	// Shared automation collaborators
	batteries := automation.NewBatteryMonitor(notifier, log)

	// Telemetry must stay a nil interface when InfluxDB is disabled; a
	// typed nil pointer would pass the devices' nil checks and panic.
	var telemetry zigbee.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}

	// Build and register every configured device
	hubs, err := buildDevices(cfg, manager, mqttClient, batteries, telemetry, log)
	if err != nil {
		return fmt.Errorf("building devices: %w", err)
	}

	// Presence aggregation: per-source topics fold into one boolean that
	// fans out to handler devices via the dispatcher and to the hub.
	presenceHub := automation.NewHub("presence", log)
	if influxClient != nil {
		presenceHub.Add(func(present bool) {
			influxClient.WritePresence("overall", present)
		})
	}
	aggregator, err := presence.NewAggregator(cfg.Presence.Topic, presenceHub, manager, log)
	if err != nil {
		return fmt.Errorf("building presence aggregator: %w", err)
	}
	if err := manager.Register(aggregator); err != nil {
		return fmt.Errorf("registering presence aggregator: %w", err)
	}
	if err := manager.Register(presence.NewAnnouncer(manager, log)); err != nil {
		return fmt.Errorf("registering presence announcer: %w", err)
	}

	// Hallway automation
	if err := wireHallway(cfg.Hallway, manager, hubs, log); err != nil {
		return fmt.Errorf("wiring hallway: %w", err)
	}

	// Cron-driven schedules
	schedules := automation.NewSchedules(sched, log)
	if err := bindSchedules(cfg.Schedules, schedules, manager, batteries); err != nil {
		return fmt.Errorf("binding schedules: %w", err)
	}
	sched.Start()
	defer func() {
		log.Info("stopping scheduler")
		<-sched.Stop().Done()
	}()
	log.Info("scheduler started", "jobs", sched.JobCount())

	// Verify all connections are healthy
	if err := healthCheck(ctx, journal, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete", "devices", manager.Len())

	// The dispatcher is the main loop; it returns when ctx is cancelled.
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. Scheduler stop (waits for in-flight jobs)
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Event journal (if enabled)

	log.Info("Homeflow stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMEFLOW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEFLOW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDevices constructs and registers every device listed in config.
//
// Zigbee devices that report a boolean condition (contacts, lights,
// light sensors, remotes, wall switches) each get their own broadcast
// hub so automations can subscribe to them by device ID.
//
// Parameters:
//   - cfg: Full application configuration
//   - manager: Dispatcher the devices register with
//   - mqttClient: Command and state transport for MQTT-backed devices
//   - batteries: Low-battery sink shared by battery-powered devices
//   - telemetry: Sample sink; nil interface when InfluxDB is disabled
//   - log: Logger instance
//
// Returns:
//   - map[string]*automation.Hub: Condition hubs keyed by device ID
//   - error: First construction or registration failure
func buildDevices(
	cfg *config.Config,
	manager *device.Manager,
	mqttClient *mqtt.Client,
	batteries *automation.BatteryMonitor,
	telemetry zigbee.Telemetry,
	log *logging.Logger,
) (map[string]*automation.Hub, error) {
	hubs := make(map[string]*automation.Hub)
	hubFor := func(id string) *automation.Hub {
		hubs[id] = automation.NewHub(id, log)
		return hubs[id]
	}

	for _, dc := range cfg.Devices.Zigbee {
		var dev device.Device
		var err error

		switch dc.Kind {
		case config.ZigbeeKindOutlet:
			dev, err = zigbee.NewOutlet(dc, mqttClient, batteries, telemetry, log)
		case config.ZigbeeKindContact:
			dev, err = zigbee.NewContactSensor(dc, hubFor(dc.ID), mqttClient, batteries, telemetry, log)
		case config.ZigbeeKindLight:
			dev, err = zigbee.NewLight(dc, mqttClient, hubFor(dc.ID), log)
		case config.ZigbeeKindLightSensor:
			dev, err = zigbee.NewLightSensor(dc, hubFor(dc.ID), manager, telemetry, batteries, log)
		case config.ZigbeeKindRemote:
			dev, err = zigbee.NewRemote(dc, hubFor(dc.ID), batteries, telemetry, log)
		case config.ZigbeeKindWallSwitch:
			dev, err = zigbee.NewWallSwitch(dc, hubFor(dc.ID), batteries, telemetry, log)
		case config.ZigbeeKindWasher:
			dev, err = zigbee.NewWasher(dc, manager, telemetry, log)
		case config.ZigbeeKindCover:
			dev, err = zigbee.NewCover(dc, mqttClient, batteries, telemetry, log)
		default:
			// Config validation rejects unknown kinds before this runs.
			err = fmt.Errorf("unknown zigbee kind %q", dc.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("zigbee device %s: %w", dc.ID, err)
		}
		if err := manager.Register(dev); err != nil {
			return nil, fmt.Errorf("zigbee device %s: %w", dc.ID, err)
		}
	}

	for _, dc := range cfg.Devices.Kasa {
		outlet, err := kasa.NewOutlet(dc, log)
		if err != nil {
			return nil, fmt.Errorf("kasa device %s: %w", dc.ID, err)
		}
		if err := manager.Register(outlet); err != nil {
			return nil, fmt.Errorf("kasa device %s: %w", dc.ID, err)
		}
	}

	for _, dc := range cfg.Devices.WOL {
		computer, err := wol.NewComputer(dc, log)
		if err != nil {
			return nil, fmt.Errorf("wol device %s: %w", dc.ID, err)
		}
		if err := manager.Register(computer); err != nil {
			return nil, fmt.Errorf("wol device %s: %w", dc.ID, err)
		}
	}

	if cfg.Hue.Enabled {
		bridge, err := hue.NewBridge(cfg.Hue, log)
		if err != nil {
			return nil, fmt.Errorf("hue bridge: %w", err)
		}
		if err := manager.Register(bridge); err != nil {
			return nil, fmt.Errorf("hue bridge: %w", err)
		}

		for _, gc := range cfg.Hue.Groups {
			group, err := hue.NewGroup(cfg.Hue, gc, log)
			if err != nil {
				return nil, fmt.Errorf("hue group %s: %w", gc.ID, err)
			}
			if err := manager.Register(group); err != nil {
				return nil, fmt.Errorf("hue group %s: %w", gc.ID, err)
			}
		}
		log.Info("hue bridge wired", "groups", len(cfg.Hue.Groups))
	}

	if cfg.Debug.Enabled {
		mirror, err := debug.NewMirror(cfg.Debug, mqttClient, log)
		if err != nil {
			return nil, fmt.Errorf("debug mirror: %w", err)
		}
		if err := manager.Register(mirror); err != nil {
			return nil, fmt.Errorf("debug mirror: %w", err)
		}
	}

	return hubs, nil
}

// wireHallway connects the hallway automation to its configured devices.
//
// The group must expose on/off. Door, trash and switch must be hub-backed
// devices (contact sensors, a wall switch or a remote). A group with its
// own hub (a zigbee light) also feeds manual-use detection; a hue group
// publishes no state reports, so that wire is skipped.
func wireHallway(cfg config.HallwayConfig, manager *device.Manager, hubs map[string]*automation.Hub, log *logging.Logger) error {
	if !cfg.Enabled {
		log.Info("hallway automation disabled")
		return nil
	}

	dev, ok := manager.Get(cfg.Group)
	if !ok {
		return fmt.Errorf("group %q not registered", cfg.Group)
	}
	group, ok := dev.(automation.Switch)
	if !ok {
		return fmt.Errorf("group %q has no on/off capability", cfg.Group)
	}

	hallway := automation.NewHallway(group, cfg.GetGrace(), log)

	wires := []struct {
		name    string
		id      string
		handler func(bool)
	}{
		{"door", cfg.Door, hallway.HandleDoor},
		{"trash", cfg.Trash, hallway.HandleTrash},
		{"switch", cfg.Switch, hallway.HandleSwitch},
	}
	for _, w := range wires {
		hub, ok := hubs[w.id]
		if !ok {
			return fmt.Errorf("%s device %q has no condition hub", w.name, w.id)
		}
		hub.Add(w.handler)
	}

	if hub, ok := hubs[cfg.Group]; ok {
		hub.Add(hallway.HandleLightReport)
	}

	log.Info("hallway automation wired",
		"group", cfg.Group,
		"door", cfg.Door,
		"trash", cfg.Trash,
		"switch", cfg.Switch,
		"grace", cfg.GetGrace(),
	)
	return nil
}

// bindSchedules registers the cron-driven actions named in config.
// Empty expressions and unnamed devices simply skip their binding.
func bindSchedules(cfg config.SchedulesConfig, schedules *automation.Schedules, manager *device.Manager, batteries *automation.BatteryMonitor) error {
	if cfg.BatteryCheck != "" {
		if err := schedules.BindBatteryCheck(cfg.BatteryCheck, batteries); err != nil {
			return fmt.Errorf("battery check: %w", err)
		}
	}

	if cfg.Filter.Device != "" {
		dev, ok := manager.Get(cfg.Filter.Device)
		if !ok {
			return fmt.Errorf("filter device %q not registered", cfg.Filter.Device)
		}
		sw, ok := dev.(automation.Switch)
		if !ok {
			return fmt.Errorf("filter device %q has no on/off capability", cfg.Filter.Device)
		}
		if err := schedules.BindSwitchCycle("filter", sw, cfg.Filter.On, cfg.Filter.Off); err != nil {
			return fmt.Errorf("filter cycle: %w", err)
		}
	}

	if cfg.Curtain.Device != "" {
		dev, ok := manager.Get(cfg.Curtain.Device)
		if !ok {
			return fmt.Errorf("curtain device %q not registered", cfg.Curtain.Device)
		}
		cover, ok := dev.(automation.OpenCloser)
		if !ok {
			return fmt.Errorf("curtain device %q has no open/close capability", cfg.Curtain.Device)
		}
		if err := schedules.BindCoverCycle("curtain", cover, cfg.Curtain.Open, cfg.Curtain.Close); err != nil {
			return fmt.Errorf("curtain cycle: %w", err)
		}
	}

	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - journal: Event journal to check (may be nil if disabled)
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, journal *history.Journal, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if journal != nil {
		if err := journal.HealthCheck(ctx); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttTransport adapts the infrastructure MQTT client to the device
// manager's Transport interface. The manager's contract carries no QoS
// parameter; the configured default applies to every subscription.
type mqttTransport struct {
	client *mqtt.Client
	qos    byte
}

// Subscribe implements device.Transport.
func (t *mqttTransport) Subscribe(topic string, handler func(topic string, payload []byte) error) error {
	return t.client.Subscribe(topic, t.qos, handler)
}
