// Package config loads the YAML configuration shared by the wpan tools.
//
// Durations are written as Go duration strings ("10ms", "1.5s"), addresses
// in the textual form accepted by ieee802154.ParseAddress. Unset fields
// keep the values from Default.
//
//	interface:
//	  ack_timeout: 10ms
//	  response_timeout: 500ms
//	  ack_mode: true
//	state_file: /var/lib/wpan/state.json
//	medium:
//	  coordinators:
//	    - channel: 15
//	      pan_id: 0x1234
//	      address: "0x0000"
//	      respond_to_beacon_request: true
//	      auto_ack: true
package config
