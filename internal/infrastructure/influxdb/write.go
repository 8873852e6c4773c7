package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteIlluminance records an ambient light reading.
//
// Parameters:
//   - deviceID: Sensor identifier (e.g. "hall-light-sensor")
//   - lux: Measured illuminance
func (c *Client) WriteIlluminance(deviceID string, lux float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"illuminance",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{"lux": lux},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePower records an instantaneous power reading from a metering outlet.
//
// Parameters:
//   - deviceID: Outlet identifier (e.g. "kettle")
//   - watts: Current power draw in watts
func (c *Client) WritePower(deviceID string, watts float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"power",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{"watts": watts},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBattery records a battery level report from a wireless sensor.
//
// Parameters:
//   - deviceID: Sensor identifier
//   - percent: Remaining charge, 0-100
func (c *Client) WriteBattery(deviceID string, percent float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"battery",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{"percent": percent},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresence records an occupancy transition.
//
// Parameters:
//   - source: Where the reading came from ("overall" or a per-source name)
//   - present: Whether anyone is home
func (c *Client) WritePresence(source string, present bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"presence",
		map[string]string{"source": source},
		map[string]interface{}{"present": present},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point for measurements without a helper.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
