package zigbee

import (
	"testing"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

func wallSwitchConfig() config.ZigbeeDeviceConfig {
	return config.ZigbeeDeviceConfig{
		ID:    "hall-switch",
		Kind:  config.ZigbeeKindWallSwitch,
		Topic: "zigbee2mqtt/hall/switch",
	}
}

func TestWallSwitch_PressMapping(t *testing.T) {
	hub, rec := recordedHub(t, "hall-switch")
	sw, err := NewWallSwitch(wallSwitchConfig(), hub, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewWallSwitch() error = %v", err)
	}

	sw.HandleMessage("", action("on_press"))
	sw.HandleMessage("", action("off_press"))
	sw.HandleMessage("", action("on_hold")) // holds are not intents

	if got := rec.published(); len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("hub publishes = %v, want [true false]", got)
	}
}

func TestWallSwitch_BatteryForwarded(t *testing.T) {
	sink := &fakeSink{}
	sw, err := NewWallSwitch(wallSwitchConfig(), nil, sink, nil, nil)
	if err != nil {
		t.Fatalf("NewWallSwitch() error = %v", err)
	}

	sw.HandleMessage("", []byte(`{"action":"on_press","battery":42}`))

	if reports := sink.reported(); len(reports) != 1 || reports[0].level != 42 {
		t.Errorf("battery reports = %v, want one at 42", reports)
	}
}

func TestWallSwitch_MalformedReportLogged(t *testing.T) {
	logger := &recordingLogger{}
	sw, err := NewWallSwitch(wallSwitchConfig(), nil, nil, nil, logger)
	if err != nil {
		t.Fatalf("NewWallSwitch() error = %v", err)
	}

	sw.HandleMessage("", []byte("{"))

	if logger.warnCount() != 1 {
		t.Errorf("malformed report logged %d warnings, want 1", logger.warnCount())
	}
}
