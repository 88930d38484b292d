// Package mqtt provides the MQTT client used by Signalbind to reach
// gateway-bridged instrument channels.
//
// It wraps paho.mqtt.golang with:
//   - Connection management with auto-reconnect and exponential backoff
//   - Subscription tracking and restoration after reconnect
//   - Last Will and Testament for offline detection
//   - Panic recovery around message handlers
//
// The package knows nothing about channel identifiers or schemas; the
// channel/mqttchan package maps identifiers onto topics and uses this
// client as its transport.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("signalbind/channels/XF:Mtr1.VAL/state", 1,
//	    func(topic string, payload []byte) error {
//	        // handle value update
//	        return nil
//	    })
//
// # Thread Safety
//
// All client methods are safe for concurrent use. Handlers are invoked in
// separate goroutines by the paho library and should not block.
package mqtt
