package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/plipbox.go/pkg/remote/comm/mqtt"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("PLIPBOX_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		frame, err := msgs.Decode(payload)
		if err != nil {
			log.Printf("%s: bad frame: %v", topic, err)
			return
		}
		str, err := msgs.EncodeJSON(frame)
		if err != nil {
			log.Printf("%s: [%s] %v", topic, frame.Kind(), err)
			return
		}
		log.Printf("%s: [%s] %s", topic, frame.Kind(), str)
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
