package mqtt

// Topic prefixes for Homeflow's own topics. Device topics (zigbee2mqtt,
// presence sources, debug mirror) come from configuration; only the
// service's system topics are fixed.
const (
	// TopicPrefix is the base for all Homeflow topics.
	TopicPrefix = "homeflow"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "homeflow/system"
)

// Topics provides builders for Homeflow MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// SystemStatus returns the topic carrying online/offline service status.
// The LWT is registered on the same topic.
//
// Example: homeflow/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
