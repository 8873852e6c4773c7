// Package influxdb provides time-series telemetry storage for Homeflow.
//
// It wraps the official influxdb-client-go v2 library with helpers for
// the readings the sensors actually produce: illuminance, outlet power,
// sensor battery levels and presence transitions.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // Telemetry is optional; log and continue
//	}
//	defer client.Close()
//
//	client.WriteIlluminance("hall-light-sensor", 42.0)
//	client.WritePower("kettle", 1840.5)
//
// # Thread Safety
//
// All methods are safe for concurrent use. The write API batches points
// and sends them asynchronously; write methods never block and never
// return errors. Failures surface via SetOnError.
package influxdb
